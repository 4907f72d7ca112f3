package analysis

import "github.com/Aanishnithin07/PresenceAI/internal/domain/entities"

const (
	fastPaceWPM    = 200
	slowPaceWPM    = 100
	nervousFillers = 10
)

// Classify maps verbal metrics to a sentiment label. Pace is checked before
// fillers.
func Classify(speakingPace, fillerWordCount int) entities.Sentiment {
	switch {
	case speakingPace > fastPaceWPM:
		return entities.SentimentFastExcited
	case speakingPace < slowPaceWPM:
		return entities.SentimentSlowThoughtful
	case fillerWordCount > nervousFillers:
		return entities.SentimentNervousUncertain
	default:
		return entities.SentimentConfidentCalm
	}
}
