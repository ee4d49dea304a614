package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/auth"
	"github.com/swelljoe/weatherpulse/internal/db"
)

type contextKey int

const userKey contextKey = iota

func withUser(ctx context.Context, u *db.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// currentUser returns the user attached by requireAuth
func currentUser(r *http.Request) *db.User {
	u, _ := r.Context().Value(userKey).(*db.User)
	return u
}

// requireAuth rejects requests without a valid bearer access token
func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			h.writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		u, err := h.auth.Authenticate(r.Context(), strings.TrimSpace(token))
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			h.writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		case errors.Is(err, auth.ErrDisabled):
			h.writeDetail(w, http.StatusUnauthorized, "User is inactive")
			return
		case err != nil:
			h.internalError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// cors answers preflight requests and tags responses for allowed origins
func (h *Handlers) cors(next http.Handler) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOriginValidator(func(origin string) bool { return h.origins[origin] }),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorillahandlers.AllowCredentials(),
		gorillahandlers.MaxAge(86400),
		gorillahandlers.OptionStatusCode(http.StatusNoContent),
	)(next)
}

// recoverPanics turns a handler panic into a 500 and logs it
func (h *Handlers) recoverPanics(next http.Handler) http.Handler {
	return gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(h.log.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
	)(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
