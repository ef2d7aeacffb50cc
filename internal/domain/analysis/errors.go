package analysis

import "errors"

var (
	// ErrEmptyInput is returned when the submitted text is blank. No state change happens.
	ErrEmptyInput = errors.New("input text is empty")
	// ErrInFlight is returned when a submission arrives while another one is loading.
	ErrInFlight = errors.New("an analysis is already in progress")
	// ErrInputTooLong is returned when the text exceeds the configured limit.
	ErrInputTooLong = errors.New("input text is too long")

	ErrEmptyResponse     = errors.New("empty response from model")
	ErrMalformedResponse = errors.New("malformed response from model")
)

// User facing messages placed into the error state.
const (
	MsgNoAnalysis   = "No analysis received from the model."
	MsgParseFailure = "Failed to parse the analysis result."
	MsgUnexpected   = "An unexpected error occurred while analyzing the text."
	MsgTooLong      = "The review is too long to analyze. Please shorten it and try again."
)
