package handlers

import (
	"log"
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render   *render.Render
	orderSvc *services.OrderService
}

func NewOrderHandler(r *render.Render, orderSvc *services.OrderService) *OrderHandler {
	return &OrderHandler{render: r, orderSvc: orderSvc}
}

// OrderView is an order with its frozen line items decoded.
type OrderView struct {
	models.Order
	Items []models.OrderLineItem `json:"items"`
}

func NewOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		view := OrderView{Order: o}
		snapshot, err := o.Snapshot()
		if err != nil {
			log.Printf("OrderView: order %s has an unreadable snapshot: %v", o.ID, err)
		} else {
			view.Items = snapshot.Items
		}
		views = append(views, view)
	}
	return views
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.ListUserOrders(r.Context(), helpers.UserIDFromContext(r.Context()))
	if err != nil {
		helpers.RespondError(h.render, w, "OrderHandler.MyOrders", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", NewOrderViews(orders))
}
