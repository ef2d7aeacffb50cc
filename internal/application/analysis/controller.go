package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/reviewlens/internal/application"
	"github.com/bryanwahyu/reviewlens/internal/domain/ai"
	domain "github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

// Recorder receives analysis lifecycle events, typically for metrics.
type Recorder interface {
	AnalysisStarted()
	AnalysisFinished(status string, elapsed time.Duration)
}

// Controller owns the state of one analysis view. At most one model call is
// outstanding at a time; a submission made while loading is rejected.
//
// Exported fields are set once before first use.
type Controller struct {
	Client        ai.Client
	Prompt        domain.Prompt
	Baseline      domain.BaselineScorer // optional
	Recorder      Recorder              // optional
	Clock         application.Clock
	Timeout       time.Duration
	MaxInputChars int

	mu    sync.Mutex
	state domain.State
}

// State returns the current snapshot.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a model call is outstanding.
func (c *Controller) Busy() bool {
	return c.State().Loading()
}

// Run submits text and blocks until the model call resolves. It returns
// ErrEmptyInput or ErrInFlight without touching the state, and
// ErrInputTooLong after moving to the error state.
func (c *Controller) Run(ctx context.Context, text string) (domain.State, error) {
	req, st, err := c.begin(text)
	if err != nil {
		return st, err
	}
	return c.resolve(ctx, req), nil
}

// Start submits text and returns the loading state immediately; the model
// call resolves in the background.
func (c *Controller) Start(text string) (domain.State, error) {
	req, st, err := c.begin(text)
	if err != nil {
		return st, err
	}
	go c.resolve(context.Background(), req)
	return st, nil
}

func (c *Controller) begin(text string) (domain.Request, domain.State, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Request{}, c.State(), domain.ErrEmptyInput
	}

	clock := application.OrSystem(c.Clock)
	req := domain.Request{
		ID:          uuid.NewString(),
		Text:        domain.SanitizeText(text),
		SubmittedAt: clock.Now(),
	}
	if req.Text == "" {
		return domain.Request{}, c.State(), domain.ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading() {
		slog.Warn("[Controller] Submission rejected, analysis in flight",
			slog.String("request_id", c.state.RequestID))
		return domain.Request{}, c.state, domain.ErrInFlight
	}

	if err := domain.ValidateLength(req.Text, c.MaxInputChars); err != nil {
		c.state = c.state.Reject(req, domain.MsgTooLong, clock.Now())
		slog.Warn("[Controller] Submission rejected, input too long",
			slog.String("request_id", req.ID),
			slog.Int("max_chars", c.MaxInputChars))
		return domain.Request{}, c.state, err
	}

	c.state = c.state.Begin(req)
	if c.Recorder != nil {
		c.Recorder.AnalysisStarted()
	}
	slog.Info("[Controller] Analysis started",
		slog.String("request_id", req.ID),
		slog.Int("chars", len(req.Text)),
		slog.String("prompt_version", c.Prompt.Version))
	return req, c.state, nil
}

func (c *Controller) resolve(ctx context.Context, req domain.Request) domain.State {
	clock := application.OrSystem(c.Clock)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	payload, err := c.Client.Analyze(ctx, ai.Request{
		ID:                req.ID,
		SystemInstruction: c.Prompt.SystemInstruction,
		Schema:            c.Prompt.Schema,
		Content:           req.Text,
		Temperature:       c.Prompt.Temperature,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.New("the analysis service did not respond in time")
	}

	outcome := domain.Resolve(payload, err)
	if outcome.Kind == domain.OutcomeOk && c.Baseline != nil {
		b := c.Baseline.Score(req.Text)
		outcome = outcome.WithBaseline(&b)
	}

	c.mu.Lock()
	if c.state.RequestID == req.ID {
		c.state = c.state.Settle(outcome, clock.Now())
	}
	next := c.state
	c.mu.Unlock()

	elapsed := next.CompletedAt.Sub(req.SubmittedAt)
	if c.Recorder != nil {
		c.Recorder.AnalysisFinished(next.Status.String(), elapsed)
	}
	if outcome.Kind == domain.OutcomeErr {
		slog.Error("[Controller] Analysis failed",
			slog.String("request_id", req.ID),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", outcome.Cause))
	} else {
		slog.Info("[Controller] Analysis completed",
			slog.String("request_id", req.ID),
			slog.Duration("elapsed", elapsed),
			slog.String("sentiment", string(outcome.Result.Sentiment)))
	}
	return next
}
