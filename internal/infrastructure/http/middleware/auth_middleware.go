package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Aanishnithin07/PresenceAI/errors"
	"github.com/Aanishnithin07/PresenceAI/pkg/jwt"
)

// SubjectContextKey is the echo context key holding the token subject
const SubjectContextKey = "subject"

// TokenValidator validates bearer tokens. *jwt.Manager implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that requires a valid bearer token and
// sets "subject" into the Echo context. Failures are returned as AppError so
// the router's error handler renders them in the standard envelope.
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return errors.ErrTokenExpired()
				}
				appErr := errors.ErrInvalidToken()
				appErr.Raw = err
				return appErr
			}

			c.Set(SubjectContextKey, claims.Subject)
			return next(c)
		}
	}
}

// GetSubject returns the authenticated subject, or "" on unauthenticated routes
func GetSubject(c echo.Context) string {
	subject, _ := c.Get(SubjectContextKey).(string)
	return subject
}

func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
