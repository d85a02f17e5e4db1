package handlers

import (
	"log"
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

type CheckoutHandler struct {
	render      *render.Render
	checkoutSvc *services.CheckoutService
	authSvc     *services.AuthService
	openCart    CartOpener
}

func NewCheckoutHandler(r *render.Render, checkoutSvc *services.CheckoutService, authSvc *services.AuthService, openCart CartOpener) *CheckoutHandler {
	return &CheckoutHandler{render: r, checkoutSvc: checkoutSvc, authSvc: authSvc, openCart: openCart}
}

type placeOrderRequest struct {
	Address          string `json:"address"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

// InitiatePayment opens a gateway payment for the cart; the client completes it and then places the order.
func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.GetUser(r.Context(), helpers.UserIDFromContext(r.Context()))
	if err != nil {
		helpers.RespondError(h.render, w, "CheckoutHandler.InitiatePayment", err)
		return
	}

	session, err := h.checkoutSvc.InitiatePayment(r.Context(), *user, h.openCart(w, r))
	if err != nil {
		helpers.RespondError(h.render, w, "CheckoutHandler.InitiatePayment", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", session)
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		helpers.RespondError(h.render, w, "CheckoutHandler.PlaceOrder", err)
		return
	}

	userID := helpers.UserIDFromContext(r.Context())
	result, err := h.checkoutSvc.PlaceOrder(r.Context(), services.PlaceOrderInput{
		UserID:           userID,
		Address:          req.Address,
		Method:           req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	}, h.openCart(w, r))
	if err != nil {
		log.Printf("CheckoutHandler.PlaceOrder: order for user %s refused: %v", userID, err)
		helpers.RespondError(h.render, w, "CheckoutHandler.PlaceOrder", err)
		return
	}

	if result.Existing {
		helpers.RespondOK(h.render, w, http.StatusOK, "Order already placed for this payment.", result.Order)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusCreated, "Order placed successfully!", result.Order)
}
