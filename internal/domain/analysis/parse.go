package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencedPattern matches a JSON object wrapped in a markdown code block.
var fencedPattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(\\{.*\\})\\s*```$")

// wireResult mirrors Result with pointer fields so absent keys can be told apart from zero values.
type wireResult struct {
	Sentiment   *string   `json:"sentiment"`
	Confidence  *float64  `json:"confidence"`
	TopThemes   *[]string `json:"top_themes"`
	Tone        *string   `json:"tone"`
	IsSarcastic *bool     `json:"is_sarcastic"`
	Summary     *string   `json:"summary"`
}

// ParseResult decodes a model payload into a Result. All six fields are
// required; a missing field, an unknown sentiment or a confidence outside
// [0,1] is reported as ErrMalformedResponse.
func ParseResult(payload string) (*Result, error) {
	raw := strings.TrimSpace(payload)
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	if m := fencedPattern.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	var w wireResult
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after result object", ErrMalformedResponse)
	}

	var missing []string
	if w.Sentiment == nil {
		missing = append(missing, "sentiment")
	}
	if w.Confidence == nil {
		missing = append(missing, "confidence")
	}
	if w.TopThemes == nil {
		missing = append(missing, "top_themes")
	}
	if w.Tone == nil {
		missing = append(missing, "tone")
	}
	if w.IsSarcastic == nil {
		missing = append(missing, "is_sarcastic")
	}
	if w.Summary == nil {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	sentiment, ok := normalizeSentiment(*w.Sentiment)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sentiment %q", ErrMalformedResponse, *w.Sentiment)
	}
	if *w.Confidence < 0 || *w.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformedResponse, *w.Confidence)
	}

	themes := make([]string, 0, len(*w.TopThemes))
	themes = append(themes, *w.TopThemes...)

	return &Result{
		Sentiment:   sentiment,
		Confidence:  *w.Confidence,
		TopThemes:   themes,
		Tone:        *w.Tone,
		IsSarcastic: *w.IsSarcastic,
		Summary:     *w.Summary,
	}, nil
}

func normalizeSentiment(s string) (Sentiment, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Sentiments {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}
