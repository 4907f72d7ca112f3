package analysis

import (
	"testing"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		pace, fillers int
		want          entities.Sentiment
	}{
		{250, 20, entities.SentimentFastExcited},
		{201, 0, entities.SentimentFastExcited},
		{200, 0, entities.SentimentConfidentCalm},
		{50, 20, entities.SentimentSlowThoughtful},
		{0, 0, entities.SentimentSlowThoughtful},
		{99, 0, entities.SentimentSlowThoughtful},
		{100, 0, entities.SentimentConfidentCalm},
		{150, 11, entities.SentimentNervousUncertain},
		{150, 10, entities.SentimentConfidentCalm},
		{150, 0, entities.SentimentConfidentCalm},
	}

	for _, tt := range tests {
		if got := Classify(tt.pace, tt.fillers); got != tt.want {
			t.Errorf("Classify(%d, %d) = %s, want %s", tt.pace, tt.fillers, got, tt.want)
		}
	}
}
