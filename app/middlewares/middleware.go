package middlewares

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
	"github.com/threadline/storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

const CSRFHeader = "X-CSRF-Token"

// SessionMiddleware copies the signed-in user from the session cookie into the request context.
func SessionMiddleware(store sessions.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := store.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := helpers.WithUser(r.Context(), userID, store.GetRole(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CartCountMiddleware(openCart func(http.ResponseWriter, *http.Request) *services.CartStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count := openCart(w, r).TotalItems()
			ctx := context.WithValue(r.Context(), helpers.CartCountKey, count)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.UserIDFromContext(r.Context()) == "" {
				log.Printf("RequireAuth: anonymous request to %s rejected", r.URL.Path)
				rnd.JSON(w, http.StatusUnauthorized, map[string]interface{}{
					"status":  "error",
					"message": "You need to sign in first.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenHeader hands the client the token it must echo back on mutating requests.
func CSRFTokenHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(CSRFHeader, csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

func CSRFProtect(authKey []byte, secure bool) func(http.Handler) http.Handler {
	return csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("CSRFProtect: %s %s rejected: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
		})),
	)
}
