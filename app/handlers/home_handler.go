package handlers

import (
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

const featuredProductCount = 8

type HomeHandler struct {
	render     *render.Render
	productSvc *services.ProductService
}

func NewHomeHandler(r *render.Render, productSvc *services.ProductService) *HomeHandler {
	return &HomeHandler{render: r, productSvc: productSvc}
}

// Home returns the landing page data: every category and the newest products.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productSvc.ListCategories(r.Context())
	if err != nil {
		helpers.RespondError(h.render, w, "HomeHandler.Home", err)
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), "")
	if err != nil {
		helpers.RespondError(h.render, w, "HomeHandler.Home", err)
		return
	}
	if len(products) > featuredProductCount {
		products = products[:featuredProductCount]
	}

	helpers.RespondOK(h.render, w, http.StatusOK, "", helpers.GetBaseData(r, map[string]interface{}{
		"categories": categories,
		"featured":   products,
	}))
}
