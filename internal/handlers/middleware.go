package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tonequest/internal/models"
	"tonequest/internal/security"
	"tonequest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth     *service.AuthService
	tokens   *security.TokenIssuer
	throttle *security.LoginThrottle
	logger   *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth *service.AuthService, tokens *security.TokenIssuer, logger *zap.Logger) *Middleware {
	return &Middleware{
		auth:     auth,
		tokens:   tokens,
		throttle: security.NewLoginThrottle(10, time.Minute),
		logger:   logger,
	}
}

// RequireAuth validates the Bearer token and loads the user into the
// request context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := m.auth.GetUser(claims.Subject)
		if err != nil {
			// Token subject no longer exists, e.g. deleted account
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole restricts a handler to users holding one of the given
// roles. Must be nested inside RequireAuth.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "insufficient role")
		}
	}
}

// RateLimit throttles a handler per client IP, used on the
// credential endpoints
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.ClientIP(r)
		if !m.throttle.Allow(ip) {
			m.logger.Warn("rate limit exceeded", zap.String("ip", ip))
			respondError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	}
}

// LogRequests records method, path, status and duration for every request
func (m *Middleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// UserFromContext returns the authenticated user, nil outside
// RequireAuth
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserContextKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
