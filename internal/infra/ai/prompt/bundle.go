package prompt

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

// Sources a prompt bundle can be loaded from.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
	SourceMinio   = "minio"
)

//go:embed review.yaml
var builtin []byte

// Fetcher reads a raw object by key, e.g. from a bucket.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Default returns the compiled-in review analysis bundle.
func Default() analysis.Prompt {
	p, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("prompt: builtin bundle is invalid: %v", err))
	}
	return p
}

// Parse decodes and validates a YAML bundle.
func Parse(data []byte) (analysis.Prompt, error) {
	var p analysis.Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return analysis.Prompt{}, fmt.Errorf("decode prompt bundle: %w", err)
	}
	p.SystemInstruction = strings.TrimSpace(p.SystemInstruction)
	if err := p.Validate(); err != nil {
		return analysis.Prompt{}, err
	}
	return p, nil
}

// LoadFile reads a bundle from disk.
func LoadFile(path string) (analysis.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Prompt{}, err
	}
	return Parse(data)
}

// Resolve loads the bundle for source. objects is only needed for SourceMinio.
func Resolve(ctx context.Context, source, path, key string, objects Fetcher) (analysis.Prompt, error) {
	switch source {
	case "", SourceBuiltin:
		return Default(), nil
	case SourceFile:
		if path == "" {
			return analysis.Prompt{}, errors.New("prompt source file requires a path")
		}
		return LoadFile(path)
	case SourceMinio:
		if objects == nil || key == "" {
			return analysis.Prompt{}, errors.New("prompt source minio requires a store and an object key")
		}
		data, err := objects.Fetch(ctx, key)
		if err != nil {
			return analysis.Prompt{}, fmt.Errorf("fetch prompt bundle %s: %w", key, err)
		}
		return Parse(data)
	default:
		return analysis.Prompt{}, fmt.Errorf("unknown prompt source %q", source)
	}
}
