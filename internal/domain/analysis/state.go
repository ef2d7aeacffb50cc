package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Status is the phase of the analysis controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StatusIdle
	case "loading":
		*s = StatusLoading
	case "success":
		*s = StatusSuccess
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", string(b))
	}
	return nil
}

// State is an immutable snapshot of the controller. Transitions return a new value.
type State struct {
	Status      Status    `json:"status"`
	RequestID   string    `json:"request_id,omitempty"`
	Input       string    `json:"input,omitempty"`
	Result      *Result   `json:"result,omitempty"`
	Baseline    *Baseline `json:"baseline,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Idle is the state before the first submission.
func Idle() State { return State{Status: StatusIdle} }

// Loading reports whether a model call is outstanding.
func (s State) Loading() bool { return s.Status == StatusLoading }

// Begin enters loading for req, dropping any previous result or error.
func (s State) Begin(req Request) State {
	return State{
		Status:    StatusLoading,
		RequestID: req.ID,
		Input:     req.Text,
		StartedAt: req.SubmittedAt,
	}
}

// Reject moves straight to error for req without a model call.
func (s State) Reject(req Request, message string, at time.Time) State {
	return State{
		Status:      StatusError,
		RequestID:   req.ID,
		Input:       req.Text,
		Error:       message,
		StartedAt:   req.SubmittedAt,
		CompletedAt: at,
	}
}

// Settle folds a resolved outcome into the state. A pending outcome leaves it unchanged.
func (s State) Settle(o Outcome, at time.Time) State {
	next := State{
		RequestID:   s.RequestID,
		Input:       s.Input,
		StartedAt:   s.StartedAt,
		CompletedAt: at,
	}
	switch o.Kind {
	case OutcomeOk:
		r := *o.Result
		next.Status = StatusSuccess
		next.Result = &r
		next.Baseline = o.Baseline
	case OutcomeErr:
		next.Status = StatusError
		next.Error = o.Message
	default:
		return s
	}
	return next
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeOk
	OutcomeErr
)

// Outcome is the resolution of one model call: Pending, Ok(Result) or Err(message).
type Outcome struct {
	Kind     OutcomeKind
	Result   *Result
	Baseline *Baseline
	Message  string
	Cause    error
}

func Pending() Outcome { return Outcome{Kind: OutcomePending} }

func Ok(r Result) Outcome { return Outcome{Kind: OutcomeOk, Result: &r} }

func Err(message string, cause error) Outcome {
	return Outcome{Kind: OutcomeErr, Message: message, Cause: cause}
}

// WithBaseline attaches a lexicon score to a successful outcome.
func (o Outcome) WithBaseline(b *Baseline) Outcome {
	if o.Kind == OutcomeOk {
		o.Baseline = b
	}
	return o
}

// Resolve maps the raw result of a model call to an Outcome.
func Resolve(payload string, callErr error) Outcome {
	if callErr != nil {
		msg := strings.TrimSpace(callErr.Error())
		if msg == "" {
			msg = MsgUnexpected
		}
		return Err(msg, callErr)
	}
	if strings.TrimSpace(payload) == "" {
		return Err(MsgNoAnalysis, ErrEmptyResponse)
	}
	r, err := ParseResult(payload)
	if err != nil {
		return Err(MsgParseFailure, err)
	}
	return Ok(*r)
}
