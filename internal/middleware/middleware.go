package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/tawkr/tawkr-backend/internal/utils"
)

const SessionCookieName = "session_id"

type SessionFetcher interface {
	FindSessionByID(ctx context.Context, id string) (utils.SessionData, error)
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSessionByID(r.Context(), cookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

// AdminMiddleware must run after SessionMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := utils.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing session in context", http.StatusUnauthorized)
			return
		}

		if !session.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FranchiseMiddleware admits franchise users only. Must run after
// SessionMiddleware.
func FranchiseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := utils.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing session in context", http.StatusUnauthorized)
			return
		}

		if !session.IsFranchise() {
			http.Error(w, "Forbidden: franchise access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware echoes the request origin back when it is on the
// allow-list.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
