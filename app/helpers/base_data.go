package helpers

import (
	"net/http"

	"github.com/threadline/storefront/app/models"
)

// GetBaseData adds the session fields every storefront response carries.
func GetBaseData(r *http.Request, pageSpecificData map[string]interface{}) map[string]interface{} {
	if pageSpecificData == nil {
		pageSpecificData = make(map[string]interface{})
	}

	ctx := r.Context()
	userID := UserIDFromContext(ctx)
	pageSpecificData["cart_count"] = CartCountFromContext(ctx)
	pageSpecificData["is_logged_in"] = userID != ""
	pageSpecificData["is_admin"] = RoleFromContext(ctx) == models.RoleAdmin
	if userID != "" {
		pageSpecificData["user_id"] = userID
	}
	return pageSpecificData
}
