package admin

import (
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
)

// CreateSale records a walk-in purchase billed at the counter.
func (h *AdminHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var in services.BillingInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateSale", err)
		return
	}

	sale, err := h.billingSvc.CreateSale(r.Context(), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateSale", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusCreated, "Bill saved.", sale)
}

func (h *AdminHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.billingSvc.ListSales(r.Context())
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Sales", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", sales)
}
