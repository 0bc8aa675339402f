package tagging

import "strings"

// Lexicon-based sentiment scoring. The scores are advisory only; nothing
// downstream aggregates them.

var positiveWords = []string{"good", "great", "excellent", "love", "awesome", "fantastic", "amazing", "happy", "fun", "best", "win", "success"}

var negativeWords = []string{"bad", "terrible", "awful", "hate", "broken", "sad", "angry", "worst", "fail", "problem", "crisis", "scandal"}

// SentimentScores holds the advisory per-post sentiment features.
type SentimentScores struct {
	Positive float64
	Negative float64
	Compound float64
}

// ScoreSentiment counts lexicon hits in the text. Positive and Negative
// are each hit fraction of both lexicons combined; Compound is their signed
// difference, in [-1,1].
func ScoreSentiment(text string) SentimentScores {
	norm := strings.ToLower(text)

	positiveHits := 0
	for _, word := range positiveWords {
		if strings.Contains(norm, word) {
			positiveHits++
		}
	}

	negativeHits := 0
	for _, word := range negativeWords {
		if strings.Contains(norm, word) {
			negativeHits++
		}
	}

	total := positiveHits + negativeHits
	if total == 0 {
		return SentimentScores{}
	}

	return SentimentScores{
		Positive: float64(positiveHits) / float64(total),
		Negative: float64(negativeHits) / float64(total),
		Compound: float64(positiveHits-negativeHits) / float64(total),
	}
}
