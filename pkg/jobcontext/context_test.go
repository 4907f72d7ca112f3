package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestJobBegin_Metadata(t *testing.T) {
	id := uuid.New()
	ctx, cancel := JobBegin(context.Background(), id, "interview_analysis", Options{MaxRetries: 2})
	defer cancel()

	meta := GetJobMetadata(ctx)
	if meta.JobID != id {
		t.Errorf("expected job id %s, got %s", id, meta.JobID)
	}
	if meta.JobType != "interview_analysis" {
		t.Errorf("unexpected job type %q", meta.JobType)
	}
	if meta.MaxRetries != 2 {
		t.Errorf("expected max retries 2, got %d", meta.MaxRetries)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected job context to carry a deadline")
	}
}

func TestJobEnd_RetriesRetryableErrors(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "persist", Options{MaxRetries: 3, BaseDelay: time.Millisecond})
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestJobEnd_StopsOnNonRetryableError(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "persist", Options{MaxRetries: 3, BaseDelay: time.Millisecond})
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("duplicate key value violates unique constraint")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestJobEnd_RecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "persist", Options{MaxRetries: 1})
	defer cancel()

	err := JobEnd(ctx, func(ctx context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected panic to surface as error")
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(2, time.Second); got != 4*time.Second {
		t.Errorf("expected 4s, got %v", got)
	}
	if got := CalculateBackoff(10, time.Second); got != 60*time.Second {
		t.Errorf("expected cap of 60s, got %v", got)
	}
}

type statusErr struct{ retry bool }

func (e statusErr) Error() string   { return "upstream status" }
func (e statusErr) Retryable() bool { return e.retry }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"retryable status", fmt.Errorf("wrapped: %w", statusErr{retry: true}), true},
		{"permanent status", statusErr{retry: false}, false},
		{"flattened reset", errors.New("read tcp: connection reset by peer"), true},
		{"validation", errors.New("invalid input syntax for type uuid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
