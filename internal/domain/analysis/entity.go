package analysis

import "time"

// Sentiment is the closed set of overall labels the model may return.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentMixed    Sentiment = "Mixed"
)

// Sentiments lists the allowed labels in schema order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed}

// Valid reports whether s is one of the four allowed labels.
func (s Sentiment) Valid() bool {
	for _, v := range Sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// Request is one user submission. It lives for exactly one model call.
type Request struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Result is the structured answer the model is constrained to return.
type Result struct {
	Sentiment   Sentiment `json:"sentiment"`
	Confidence  float64   `json:"confidence"`
	TopThemes   []string  `json:"top_themes"`
	Tone        string    `json:"tone"`
	IsSarcastic bool      `json:"is_sarcastic"`
	Summary     string    `json:"summary"`
}

// Baseline is a local lexicon score shown next to the model result.
type Baseline struct {
	Compound float64   `json:"compound"`
	Label    Sentiment `json:"label"`
}
