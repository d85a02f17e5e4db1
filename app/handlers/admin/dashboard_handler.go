package admin

import (
	"net/http"
	"strings"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

type AdminHandler struct {
	render     *render.Render
	productSvc *services.ProductService
	orderSvc   *services.OrderService
	reportSvc  *services.ReportService
	billingSvc *services.BillingService
	storage    services.ObjectStorage
	orderHub   *services.OrderEventHub
}

func NewAdminHandler(
	render *render.Render,
	productSvc *services.ProductService,
	orderSvc *services.OrderService,
	reportSvc *services.ReportService,
	billingSvc *services.BillingService,
	storage services.ObjectStorage,
	orderHub *services.OrderEventHub,
) *AdminHandler {
	return &AdminHandler{
		render:     render,
		productSvc: productSvc,
		orderSvc:   orderSvc,
		reportSvc:  reportSvc,
		billingSvc: billingSvc,
		storage:    storage,
		orderHub:   orderHub,
	}
}

// Dashboard folds the order history into the analytics view. Without query parameters the
// current month is shown; month=all covers the whole history.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, month := q.Get("type"), q.Get("month")
	if kind == "" && !strings.EqualFold(month, string(services.FilterAll)) {
		kind = string(services.FilterMonth)
	}

	filter, err := h.reportSvc.ParseFilter(kind, month, q.Get("start"), q.Get("end"))
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Dashboard", err)
		return
	}

	report, err := h.reportSvc.Dashboard(r.Context(), filter)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Dashboard", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", report)
}

func (h *AdminHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := h.reportSvc.ParseFilter(q.Get("type"), q.Get("month"), q.Get("start"), q.Get("end"))
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.SalesReport", err)
		return
	}

	report, err := h.reportSvc.SalesReport(r.Context(), filter)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.SalesReport", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", report)
}
