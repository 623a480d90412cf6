package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/logger"
)

type ctxKey struct{}

// principalFromContext returns the caller set by authMiddleware. Requests
// without a token get the anonymous principal.
func principalFromContext(ctx context.Context) authz.Principal {
	p, _ := ctx.Value(ctxKey{}).(authz.Principal)
	return p
}

func withPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// authMiddleware resolves the bearer token into a principal. A request
// without a token continues anonymously. A token that is present but
// invalid or expired is rejected so clients notice and refresh.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, domainerrors.Unauthenticated("invalid authorization header format"))
			return
		}

		claims, err := s.tokens.VerifyAccessToken(token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims.Principal())))
	})
}

// requestLogger stores a logger carrying the request and caller ids in the
// request context. It runs after authMiddleware.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.WithRequest(ctx, s.logger, principalFromContext(ctx).UserID)
		next.ServeHTTP(w, r.WithContext(logger.IntoContext(ctx, log)))
	})
}

// rateLimit limits signed-in callers by user id and everyone else by
// client address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := principalFromContext(r.Context()).UserID
		if key == "" {
			key = clientIP(r)
		}
		if !s.limiter.Allow(key) {
			logger.FromContext(r.Context(), s.logger).Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
			writeError(w, domainerrors.RateLimited("too many requests, please try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the remote address without its port. middleware.RealIP
// has already applied forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeError writes an APIError outside of huma, for middleware.
func writeError(w http.ResponseWriter, err error) {
	e := toAPIError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	//nolint:errcheck // the client may already be gone
	_ = json.NewEncoder(w).Encode(e)
}
