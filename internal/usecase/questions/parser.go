package questions

import (
	"encoding/json"
	"fmt"
	"strings"

	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// CleanResponse strips markdown fences and a leading json tag from model output
func CleanResponse(text string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "`", ""))
	if strings.HasPrefix(strings.ToLower(cleaned), "json") {
		cleaned = strings.TrimSpace(cleaned[4:])
	}
	return cleaned
}

// ParseQuestions decodes model output into at most QuestionCount questions
func ParseQuestions(text string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(CleanResponse(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrQuestionsMalformed, err)
	}

	out := make([]string, 0, QuestionCount)
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
		if len(out) == QuestionCount {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no questions", usecaseErrors.ErrQuestionsMalformed)
	}
	return out, nil
}
