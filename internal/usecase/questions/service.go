package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

const (
	// QuestionCount is the number of questions served per role
	QuestionCount = 5
	maxRoleLength = 100
	cachePrefix   = "questions:"
)

// Source tells where a question set came from
type Source string

const (
	SourceLLM      Source = "llm"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Generator completes a prompt with a language model. *ai.GroqClient implements it.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Cache stores generated question sets. *cache.MemoryStore and
// *cache.RedisStore implement it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

// SourceRecorder receives the source of every served set
type SourceRecorder interface {
	RecordQuestionSource(source string)
}

// retryable is implemented by generator errors that know whether a retry helps
type retryable interface {
	Retryable() bool
}

// Service produces interview questions for a job role
type Service struct {
	generator Generator
	cache     Cache
	bank      *Bank
	ttl       time.Duration
	recorder  SourceRecorder
	logger    *zap.Logger

	newBackOff func() backoff.BackOff
}

// NewService creates a question service. generator, cache and recorder may
// be nil; without a generator every request is served from the bank.
func NewService(generator Generator, cache Cache, bank *Bank, ttl time.Duration, recorder SourceRecorder, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		cache:     cache,
		bank:      bank,
		ttl:       ttl,
		recorder:  recorder,
		logger:    logger,

		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 4 * time.Second
	bo.MaxElapsedTime = 20 * time.Second
	return bo
}

// ValidateRole trims role and checks its length
func ValidateRole(role string) (string, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return "", fmt.Errorf("%w: empty", usecaseErrors.ErrInvalidJobRole)
	}
	if len([]rune(role)) > maxRoleLength {
		return "", fmt.Errorf("%w: longer than %d characters", usecaseErrors.ErrInvalidJobRole, maxRoleLength)
	}
	return role, nil
}

// Questions returns questions for role. Only an invalid role is an error:
// generator failures fall back to the bank.
func (s *Service) Questions(ctx context.Context, role string) ([]string, Source, error) {
	role, err := ValidateRole(role)
	if err != nil {
		return nil, "", err
	}

	key := cacheKey(role)
	if questions, ok := s.cached(ctx, key); ok {
		s.record(SourceCache)
		return questions, SourceCache, nil
	}

	questions, err := s.generate(ctx, role)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Question generation failed, using fallback bank",
				zap.String("job_role", role),
				zap.Error(err),
			)
		}
		s.record(SourceFallback)
		return s.bank.Lookup(role), SourceFallback, nil
	}

	s.store(ctx, key, questions)
	s.record(SourceLLM)
	return questions, SourceLLM, nil
}

func (s *Service) generate(ctx context.Context, role string) ([]string, error) {
	if s.generator == nil {
		return nil, usecaseErrors.ErrQuestionsGenerator
	}

	var questions []string
	operation := func() error {
		text, err := s.generator.Complete(ctx, buildPrompt(role))
		if err != nil {
			var r retryable
			if errors.As(err, &r) && !r.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		questions, err = ParseQuestions(text)
		return err
	}

	// three attempts in total
	bo := backoff.WithMaxRetries(s.newBackOff(), 2)
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Service) cached(ctx context.Context, key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("question cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (s *Service) store(ctx context.Context, key string, questions []string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil && s.logger != nil {
		s.logger.Warn("question cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) record(source Source) {
	if s.recorder != nil {
		s.recorder.RecordQuestionSource(string(source))
	}
}

func cacheKey(role string) string {
	return cachePrefix + strings.ToLower(role)
}

func buildPrompt(role string) string {
	return fmt.Sprintf(`You are an expert hiring manager. Generate %d common but insightful interview questions for a '%s' position.
Provide the response ONLY as a JSON array of strings, with no other text, explanation, or markdown backticks.
Example format: ["Question 1?", "Question 2?", "Question 3?"]`, QuestionCount, role)
}
