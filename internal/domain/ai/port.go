package ai

import (
	"context"

	"github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

// Request is everything sent to the model for one analysis.
type Request struct {
	ID                string
	SystemInstruction string
	Schema            analysis.Schema
	Content           string
	Temperature       float32
}

// Client returns the raw text payload produced by the model. An empty
// payload with a nil error means the service answered without content.
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}
