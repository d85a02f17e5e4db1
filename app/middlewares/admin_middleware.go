package middlewares

import (
	"log"
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/repositories"
	"github.com/unrolled/render"
)

// AdminAuthMiddleware re-reads the user so a role change takes effect without a new login.
func AdminAuthMiddleware(userRepo repositories.UserRepositoryImpl, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := helpers.UserIDFromContext(r.Context())
			if userID == "" {
				log.Println("AdminAuthMiddleware: User ID not found in context or empty.")
				rnd.JSON(w, http.StatusUnauthorized, map[string]interface{}{
					"status":  "error",
					"message": "You need to sign in to use the admin panel.",
				})
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil || user == nil {
				log.Printf("AdminAuthMiddleware: Error finding user %s: %v", userID, err)
				rnd.JSON(w, http.StatusUnauthorized, map[string]interface{}{
					"status":  "error",
					"message": "User not found or session is no longer valid.",
				})
				return
			}

			if !user.IsAdmin() {
				log.Printf("AdminAuthMiddleware: User %s (%s) attempted to access admin panel without admin role.", user.ID, user.Email)
				rnd.JSON(w, http.StatusForbidden, map[string]interface{}{
					"status":  "error",
					"message": "You do not have permission to access this page.",
				})
				return
			}

			ctx := helpers.WithUser(r.Context(), user.ID, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
