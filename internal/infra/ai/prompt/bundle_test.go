package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := f[key]
	if !ok {
		return nil, errors.New("The specified key does not exist.")
	}
	return data, nil
}

const customBundle = `
version: custom-v2
temperature: 0.2
systemInstruction: Analyze this review.
schema:
  name: review_analysis
  fields:
    - {name: sentiment, type: string, enum: [Positive, Negative, Neutral, Mixed]}
    - {name: confidence, type: number}
    - {name: top_themes, type: array, items: string}
    - {name: tone, type: string}
    - {name: is_sarcastic, type: boolean}
    - {name: summary, type: string}
`

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.Equal(t, "review-analysis-v1", p.Version)
	assert.InDelta(t, 0.2, p.Temperature, 1e-6)
	assert.Equal(t, analysis.ResultFields, p.Schema.Required())
	assert.Contains(t, p.SystemInstruction, "sarcas")

	f, ok := p.Schema.Field("sentiment")
	require.True(t, ok)
	assert.Equal(t, []string{"Positive", "Negative", "Neutral", "Mixed"}, f.Enum)
	for _, s := range analysis.Sentiments {
		assert.Contains(t, f.Enum, string(s))
	}

	themes, _ := p.Schema.Field("top_themes")
	assert.Equal(t, analysis.TypeArray, themes.Type)
	assert.Equal(t, analysis.TypeString, themes.Items)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "version: [unterminated"},
		{"missing schema field", "version: v\ntemperature: 0.2\nsystemInstruction: x\nschema:\n  name: s\n  fields:\n    - {name: sentiment, type: string}\n"},
		{"no instruction", "version: v\ntemperature: 0.2\nschema:\n  name: s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customBundle), 0o644))

	ctx := context.Background()
	store := fakeFetcher{"prompts/custom.yaml": []byte(customBundle)}

	p, err := Resolve(ctx, "", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "review-analysis-v1", p.Version)

	p, err = Resolve(ctx, SourceFile, path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "custom-v2", p.Version)

	p, err = Resolve(ctx, SourceMinio, "", "prompts/custom.yaml", store)
	require.NoError(t, err)
	assert.Equal(t, "custom-v2", p.Version)

	_, err = Resolve(ctx, SourceMinio, "", "prompts/missing.yaml", store)
	assert.ErrorContains(t, err, "prompts/missing.yaml")

	_, err = Resolve(ctx, SourceMinio, "", "", store)
	assert.Error(t, err)

	_, err = Resolve(ctx, SourceFile, "", "", nil)
	assert.Error(t, err)

	_, err = Resolve(ctx, "s3", "", "", nil)
	assert.ErrorContains(t, err, "unknown prompt source")
}
