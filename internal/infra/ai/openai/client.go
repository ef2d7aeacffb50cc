package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/reviewlens/internal/domain/ai"
	"github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 1024
)

type Client struct {
	*openai.Client
	Model string
}

// NewClient builds a chat-completions client. baseURL is optional and lets
// the service talk to an OpenAI compatible gateway.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{Client: openai.NewClientWithConfig(config), Model: model}
}

func (c *Client) model() string {
	if c.Model == "" {
		return defaultModel
	}
	return c.Model
}

// Analyze sends the instruction as the system message and the review as the
// user message, constraining the reply to the strict JSON schema.
func (c *Client) Analyze(ctx context.Context, in ai.Request) (string, error) {
	model := c.model()
	schema := Definition(in.Schema)
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: in.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        in.Schema.Name,
				Description: in.Schema.Description,
				Schema:      &schema,
				Strict:      true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: in.Content},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	start := time.Now()
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Warn("[OpenAIClient] Chat completion failed",
			slog.String("request_id", in.ID),
			slog.String("model", model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", classify("failed to create chat completion", err)
	}

	slog.Info("[OpenAIClient] Chat completion received",
		slog.String("request_id", in.ID),
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("total_tokens", resp.Usage.TotalTokens))

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Check verifies the credential by listing models. It satisfies the health checker interface.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.ListModels(ctx); err != nil {
		return classify("failed to list models", err)
	}
	return nil
}

func classify(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, reqErr.Err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Definition converts the response schema into a strict JSON schema object.
func Definition(s analysis.Schema) jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(s.Fields))
	for _, f := range s.Fields {
		d := jsonschema.Definition{
			Type:        jsonschema.DataType(f.Type),
			Description: f.Description,
			Enum:        f.Enum,
		}
		if f.Type == analysis.TypeArray {
			d.Items = &jsonschema.Definition{Type: jsonschema.DataType(f.Items)}
		}
		props[f.Name] = d
	}
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Description:          s.Description,
		Properties:           props,
		Required:             s.Required(),
		AdditionalProperties: false,
	}
}
