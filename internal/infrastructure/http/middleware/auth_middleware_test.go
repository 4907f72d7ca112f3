package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Aanishnithin07/PresenceAI/errors"
	"github.com/Aanishnithin07/PresenceAI/pkg/jwt"
)

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("secret", "presence-ai", time.Hour)
	valid, err := manager.GenerateToken("frontend", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expired, err := manager.GenerateToken("frontend", time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		name     string
		header   string
		wantCode errors.ErrorCode // zero when the request passes
	}{
		{"valid", "Bearer " + valid, 0},
		{"lower-case scheme", "bearer " + valid, 0},
		{"missing", "", errors.ErrorCode_UNAUTHENTICATED},
		{"wrong scheme", "Basic " + valid, errors.ErrorCode_UNAUTHENTICATED},
		{"invalid", "Bearer nope", errors.ErrorCode_AUTH_INVALID_TOKEN},
		{"expired", "Bearer " + expired, errors.ErrorCode_AUTH_TOKEN_EXPIRED},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := EchoAuth(manager)(func(c echo.Context) error {
				return c.String(http.StatusOK, GetSubject(c))
			})(c)

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if rec.Body.String() != "frontend" {
					t.Errorf("unexpected subject %q", rec.Body.String())
				}
				return
			}

			var appErr errors.AppError
			if !stdErrors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tt.wantCode || appErr.HTTPCode != http.StatusUnauthorized {
				t.Errorf("got code %s http %d, want %s 401", appErr.Code, appErr.HTTPCode, tt.wantCode)
			}
		})
	}
}
