package analysis

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		o := Resolve(validPayload, nil)
		require.Equal(t, OutcomeOk, o.Kind)
		assert.Equal(t, SentimentMixed, o.Result.Sentiment)
	})

	t.Run("empty payload", func(t *testing.T) {
		o := Resolve("", nil)
		assert.Equal(t, OutcomeErr, o.Kind)
		assert.Equal(t, MsgNoAnalysis, o.Message)
		assert.ErrorIs(t, o.Cause, ErrEmptyResponse)
	})

	t.Run("malformed payload", func(t *testing.T) {
		o := Resolve("{not json", nil)
		assert.Equal(t, OutcomeErr, o.Kind)
		assert.Equal(t, MsgParseFailure, o.Message)
		assert.Nil(t, o.Result)
	})

	t.Run("call error keeps message", func(t *testing.T) {
		o := Resolve("", errors.New("401 invalid api key"))
		assert.Equal(t, OutcomeErr, o.Kind)
		assert.Equal(t, "401 invalid api key", o.Message)
	})

	t.Run("call error without message falls back", func(t *testing.T) {
		o := Resolve(validPayload, errors.New("  "))
		assert.Equal(t, OutcomeErr, o.Kind)
		assert.Equal(t, MsgUnexpected, o.Message)
	})
}

func TestState_Transitions(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	req := Request{ID: "r1", Text: "Nice", SubmittedAt: at}

	prev := State{Status: StatusError, Error: "old failure", Result: &Result{Summary: "old"}}
	loading := prev.Begin(req)
	assert.Equal(t, StatusLoading, loading.Status)
	assert.True(t, loading.Loading())
	assert.Empty(t, loading.Error)
	assert.Nil(t, loading.Result)
	assert.Equal(t, "Nice", loading.Input)

	done := loading.Settle(Pending(), at)
	assert.Equal(t, loading, done, "pending leaves state untouched")

	ok := loading.Settle(Ok(Result{Sentiment: SentimentPositive}).WithBaseline(&Baseline{Compound: 0.5, Label: SentimentPositive}), at.Add(time.Second))
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "r1", ok.RequestID)
	require.NotNil(t, ok.Baseline)
	assert.Equal(t, time.Second, ok.CompletedAt.Sub(ok.StartedAt))

	failed := ok.Begin(Request{ID: "r2", Text: "Bad"}).Settle(Err("boom", nil), at)
	assert.Equal(t, StatusError, failed.Status)
	assert.Nil(t, failed.Result)
	assert.Nil(t, failed.Baseline)
	assert.Equal(t, "boom", failed.Error)

	rejected := Idle().Reject(req, MsgTooLong, at)
	assert.Equal(t, StatusError, rejected.Status)
	assert.Equal(t, MsgTooLong, rejected.Error)
}

func TestOutcome_WithBaselineIgnoredOnError(t *testing.T) {
	o := Err("x", nil).WithBaseline(&Baseline{})
	assert.Nil(t, o.Baseline)
}

func TestStatus_JSON(t *testing.T) {
	b, err := json.Marshal(State{Status: StatusLoading})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"loading"`)

	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"status":"success"}`), &s))
	assert.Equal(t, StatusSuccess, s.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"done"}`), &s))
}
