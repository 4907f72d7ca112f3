package questions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return g.responses[len(g.responses)-1], nil
}

type statusErr struct{ retry bool }

func (e statusErr) Error() string   { return "status" }
func (e statusErr) Retryable() bool { return e.retry }

type mapCache struct {
	mu    sync.Mutex
	items map[string]string
	ttl   time.Duration
	err   error
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]string)
	}
	c.items[key] = value
	c.ttl = expiration
	return nil
}

type sourceCounter map[string]int

func (s sourceCounter) RecordQuestionSource(source string) { s[source]++ }

const fiveQuestions = `["Q1?", "Q2?", "Q3?", "Q4?", "Q5?"]`

func newTestService(t *testing.T, gen Generator, cache Cache) (*Service, sourceCounter) {
	t.Helper()
	bank, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	counter := sourceCounter{}
	s := NewService(gen, cache, bank, 24*time.Hour, counter, zap.NewNop())
	s.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return s, counter
}

func TestCleanResponse(t *testing.T) {
	tests := map[string]string{
		"```json\n[\"a\"]\n```": `["a"]`,
		"  [\"a\"]  ":           `["a"]`,
		"JSON [\"a\"]":          `["a"]`,
		"`[\"a\"]`":             `["a"]`,
	}
	for in, want := range tests {
		if got := CleanResponse(in); got != want {
			t.Errorf("CleanResponse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseQuestions(t *testing.T) {
	got, err := ParseQuestions("```json\n" + `["A?", " ", "B?", "C?", "D?", "E?", "F?"]` + "\n```")
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	if len(got) != QuestionCount || got[0] != "A?" || got[4] != "E?" {
		t.Errorf("unexpected questions %v", got)
	}

	for _, bad := range []string{"Here are some questions", `{"q": 1}`, `[]`, `[""]`, `[1, 2]`} {
		if _, err := ParseQuestions(bad); !errors.Is(err, usecaseErrors.ErrQuestionsMalformed) {
			t.Errorf("ParseQuestions(%q): expected malformed error, got %v", bad, err)
		}
	}
}

func TestBank_Lookup(t *testing.T) {
	bank, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}

	se := bank.Lookup("software engineer")
	if len(se) != 5 || se[0] != "Tell me about yourself and your programming experience." {
		t.Errorf("unexpected software engineer questions %v", se)
	}
	if got := bank.Lookup("DATA SCIENTIST"); len(got) != 5 || !strings.Contains(got[0], "data analysis") {
		t.Errorf("unexpected data scientist questions %v", got)
	}

	generic := bank.Lookup("Chef")
	if len(generic) != 5 {
		t.Fatalf("expected 5 generic questions, got %d", len(generic))
	}
	if generic[0] != "Tell me about your experience in Chef." {
		t.Errorf("unexpected generic question %q", generic[0])
	}
	for _, q := range generic {
		if strings.Contains(q, "{role}") {
			t.Errorf("template not filled: %q", q)
		}
	}

	// callers must not be able to mutate the bank
	se[0] = "changed"
	if bank.Lookup("Software Engineer")[0] == "changed" {
		t.Error("Lookup returned the bank's own slice")
	}
}

func TestParseBank_Invalid(t *testing.T) {
	if _, err := ParseBank([]byte("roles: [")); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := ParseBank([]byte("roles: []\n")); err == nil {
		t.Error("expected an error for a bank without generic questions")
	}
}

func TestValidateRole(t *testing.T) {
	if role, err := ValidateRole("  Designer "); err != nil || role != "Designer" {
		t.Errorf("got %q, %v", role, err)
	}
	for _, bad := range []string{"", "   ", strings.Repeat("a", 101)} {
		if _, err := ValidateRole(bad); !errors.Is(err, usecaseErrors.ErrInvalidJobRole) {
			t.Errorf("ValidateRole(%q): expected invalid role, got %v", bad, err)
		}
	}
}

func TestService_Questions_GeneratesAndCaches(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n" + fiveQuestions + "\n```"}}
	cache := &mapCache{}
	s, counter := newTestService(t, gen, cache)
	ctx := context.Background()

	got, source, err := s.Questions(ctx, "Backend Developer")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if source != SourceLLM || len(got) != 5 {
		t.Fatalf("unexpected %s result %v", source, got)
	}
	if !strings.Contains(gen.prompts[0], "'Backend Developer'") {
		t.Errorf("prompt does not name the role: %s", gen.prompts[0])
	}
	if _, ok := cache.items["questions:backend developer"]; !ok || cache.ttl != 24*time.Hour {
		t.Errorf("expected cached entry with 24h ttl, got %v %v", cache.items, cache.ttl)
	}

	again, source, err := s.Questions(ctx, "backend developer")
	if err != nil || source != SourceCache || again[2] != "Q3?" {
		t.Errorf("expected cache hit, got %s %v %v", source, again, err)
	}
	if gen.calls != 1 {
		t.Errorf("expected one generator call, got %d", gen.calls)
	}
	if counter["llm"] != 1 || counter["cache"] != 1 {
		t.Errorf("unexpected source counts %v", counter)
	}
}

func TestService_Questions_RetriesMalformed(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Sure! Here you go", "still not json", fiveQuestions}}
	s, _ := newTestService(t, gen, nil)

	got, source, err := s.Questions(context.Background(), "Nurse")
	if err != nil || source != SourceLLM || len(got) != 5 {
		t.Fatalf("unexpected result %s %v %v", source, got, err)
	}
	if gen.calls != 3 {
		t.Errorf("expected three attempts, got %d", gen.calls)
	}
}

func TestService_Questions_Fallback(t *testing.T) {
	tests := []struct {
		name      string
		gen       Generator
		wantCalls int
	}{
		{"no generator", nil, 0},
		{"permanent error", &fakeGenerator{errs: []error{statusErr{retry: false}}, responses: []string{fiveQuestions}}, 1},
		{"retries exhausted", &fakeGenerator{errs: []error{statusErr{retry: true}, errors.New("timeout"), errors.New("timeout")}, responses: []string{fiveQuestions}}, 3},
		{"malformed", &fakeGenerator{responses: []string{"nope"}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &mapCache{}
			s, counter := newTestService(t, tt.gen, cache)

			got, source, err := s.Questions(context.Background(), "Software Engineer")
			if err != nil {
				t.Fatalf("Questions: %v", err)
			}
			if source != SourceFallback || len(got) != 5 {
				t.Errorf("expected fallback questions, got %s %v", source, got)
			}
			if len(cache.items) != 0 {
				t.Error("fallback answers must not be cached")
			}
			if counter["fallback"] != 1 {
				t.Errorf("unexpected source counts %v", counter)
			}
			if g, ok := tt.gen.(*fakeGenerator); ok && g.calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, g.calls)
			}
		})
	}
}

func TestService_Questions_CacheErrorIgnored(t *testing.T) {
	gen := &fakeGenerator{responses: []string{fiveQuestions}}
	s, _ := newTestService(t, gen, &mapCache{err: errors.New("redis down")})

	_, source, err := s.Questions(context.Background(), "Tester")
	if err != nil || source != SourceLLM {
		t.Errorf("expected generated questions despite cache error, got %s %v", source, err)
	}
}

func TestService_Questions_InvalidRole(t *testing.T) {
	s, _ := newTestService(t, nil, nil)
	if _, _, err := s.Questions(context.Background(), " "); !errors.Is(err, usecaseErrors.ErrInvalidJobRole) {
		t.Errorf("expected invalid role, got %v", err)
	}
}
