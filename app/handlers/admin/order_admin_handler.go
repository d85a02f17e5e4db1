package admin

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gorilla/mux"
	"github.com/threadline/storefront/app/handlers"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/models"
)

const orderStreamBuffer = 16

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.ListOrders(r.Context())
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Orders", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", handlers.NewOrderViews(orders))
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateOrderStatus", err)
		return
	}

	orderID := mux.Vars(r)["id"]
	order, err := h.orderSvc.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateOrderStatus", err)
		return
	}

	log.Printf("AdminHandler.UpdateOrderStatus: order %s is now %s", orderID, order.OrderStatus)
	helpers.RespondOK(h.render, w, http.StatusOK, "Order status updated.", order)
}

// OrderStream pushes every newly placed order to the admin as a server-sent event until the
// client disconnects.
func (h *AdminHandler) OrderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "error",
			"message": "Streaming is not supported.",
		})
		return
	}

	events, unsubscribe := h.orderHub.Subscribe(orderStreamBuffer)
	defer unsubscribe()

	header := w.Header()
	header.Set("Content-Type", sse.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := sse.Encode(w, sse.Event{Event: "order_created", Id: ev.OrderID, Data: ev}); err != nil {
				log.Printf("AdminHandler.OrderStream: write failed, closing stream: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}

