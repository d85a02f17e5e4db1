package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/services"
	"github.com/threadline/storefront/app/utils/format"
	"github.com/threadline/storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

// CartOpener binds a shopper's cart to the current request.
type CartOpener func(w http.ResponseWriter, r *http.Request) *services.CartStore

func NewCartOpener(cs *sessions.CartSessions) CartOpener {
	return func(w http.ResponseWriter, r *http.Request) *services.CartStore {
		return services.OpenCartStore(cs.ForRequest(w, r))
	}
}

type CartHandler struct {
	render      *render.Render
	productSvc  *services.ProductService
	checkoutSvc *services.CheckoutService
	openCart    CartOpener
}

func NewCartHandler(r *render.Render, productSvc *services.ProductService, checkoutSvc *services.CheckoutService, openCart CartOpener) *CartHandler {
	return &CartHandler{render: r, productSvc: productSvc, checkoutSvc: checkoutSvc, openCart: openCart}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// quantity defaults an omitted quantity to fallback; an explicit value is passed through as is.
func (req cartItemRequest) quantity(fallback int) int {
	if req.Quantity == nil {
		return fallback
	}
	return *req.Quantity
}

type cartView struct {
	Items          []models.CartItem `json:"items"`
	TotalItems     int               `json:"total_items"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	FormattedTotal string            `json:"formatted_total"`
	CODAvailable   bool              `json:"cod_available"`
	CODThreshold   decimal.Decimal   `json:"cod_threshold"`
}

func (h *CartHandler) view(cart *services.CartStore) cartView {
	total := cart.TotalPrice()
	return cartView{
		Items:          cart.Items(),
		TotalItems:     cart.TotalItems(),
		TotalPrice:     total,
		FormattedTotal: format.Price(total),
		CODAvailable:   h.checkoutSvc.CODAvailable(total),
		CODThreshold:   h.checkoutSvc.CODThreshold(),
	}
}

// withEvents runs a cart mutation and returns the last notification it produced.
func withEvents(cart *services.CartStore, mutate func() error) (string, error) {
	var message string
	unsubscribe := cart.Subscribe(func(e services.CartEvent) { message = e.Message })
	defer unsubscribe()
	err := mutate()
	return message, err
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	helpers.RespondOK(h.render, w, http.StatusOK, "", h.view(h.openCart(w, r)))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		helpers.RespondError(h.render, w, "CartHandler.AddItem", err)
		return
	}
	product, err := h.productSvc.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		helpers.RespondError(h.render, w, "CartHandler.AddItem", err)
		return
	}

	cart := h.openCart(w, r)
	message, err := withEvents(cart, func() error { return cart.AddToCart(*product, req.quantity(1)) })
	if err != nil {
		helpers.RespondError(h.render, w, "CartHandler.AddItem", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, message, h.view(cart))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		helpers.RespondError(h.render, w, "CartHandler.UpdateItem", err)
		return
	}

	cart := h.openCart(w, r)
	productID := mux.Vars(r)["productID"]
	message, err := withEvents(cart, func() error { return cart.UpdateQuantity(productID, req.quantity(0)) })
	if err != nil {
		helpers.RespondError(h.render, w, "CartHandler.UpdateItem", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, message, h.view(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart := h.openCart(w, r)
	productID := mux.Vars(r)["productID"]
	message, _ := withEvents(cart, func() error {
		cart.RemoveFromCart(productID)
		return nil
	})
	helpers.RespondOK(h.render, w, http.StatusOK, message, h.view(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.openCart(w, r)
	cart.ClearCart()
	helpers.RespondOK(h.render, w, http.StatusOK, "Cart cleared", h.view(cart))
}
