package analysis

import (
	"math"
	"strings"
	"unicode"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

var singleFillers = map[string]struct{}{
	"um":        {},
	"uh":        {},
	"like":      {},
	"so":        {},
	"actually":  {},
	"basically": {},
	"literally": {},
}

// phraseFillers are matched as consecutive token pairs
var phraseFillers = [][2]string{
	{"you", "know"},
	{"i", "mean"},
}

// VerbalMetrics are the transcript-derived metrics of one analysis
type VerbalMetrics struct {
	WordCount       int
	SpeakingPace    int
	FillerWordCount int
}

// Tokenize lower-cases text, splits it on whitespace and trims punctuation
// and symbols from both ends of every token. Sentinel transcripts have no
// tokens.
func Tokenize(text string) []string {
	if entities.IsSentinelTranscript(text) {
		return nil
	}

	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// SpeakingPace returns words per minute, truncated. It is 0 when the
// duration is not positive or there are no words.
func SpeakingPace(words int, durationSeconds float64) int {
	if durationSeconds <= 0 || words <= 0 {
		return 0
	}
	return int(math.Floor(float64(words) / (durationSeconds / 60)))
}

// CountFillers counts single-word fillers and two-word filler phrases.
// A token consumed by a phrase match is not counted again.
func CountFillers(tokens []string) int {
	count := 0
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && isPhraseFiller(tokens[i], tokens[i+1]) {
			count++
			i++
			continue
		}
		if _, ok := singleFillers[tokens[i]]; ok {
			count++
		}
	}
	return count
}

func isPhraseFiller(first, second string) bool {
	for _, p := range phraseFillers {
		if p[0] == first && p[1] == second {
			return true
		}
	}
	return false
}

// ComputeVerbalMetrics derives pace and filler count from a transcript
func ComputeVerbalMetrics(transcript string, durationSeconds float64) VerbalMetrics {
	tokens := Tokenize(transcript)
	return VerbalMetrics{
		WordCount:       len(tokens),
		SpeakingPace:    SpeakingPace(len(tokens), durationSeconds),
		FillerWordCount: CountFillers(tokens),
	}
}
