package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/bryanwahyu/reviewlens/internal/domain/analysis"
)

// Compound scores at or beyond these bounds count as positive or negative.
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// Vader scores text with the VADER lexicon. It is a local reference only;
// the analysis result always comes from the model.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

// Score implements analysis.BaselineScorer.
func (v *Vader) Score(text string) analysis.Baseline {
	scores := v.analyzer.PolarityScores(ConvertMarkdownToText(text))
	return analysis.Baseline{
		Compound: scores.Compound,
		Label:    Label(scores.Compound),
	}
}

// Label maps a compound score to a sentiment.
func Label(compound float64) analysis.Sentiment {
	switch {
	case compound >= positiveThreshold:
		return analysis.SentimentPositive
	case compound <= negativeThreshold:
		return analysis.SentimentNegative
	default:
		return analysis.SentimentNeutral
	}
}
