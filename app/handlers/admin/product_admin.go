package admin

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
)

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Products", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateProduct", err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateProduct", err)
		return
	}
	log.Printf("✅ AdminHandler.CreateProduct: product %s (%s) created", product.ID, product.Title)
	helpers.RespondOK(h.render, w, http.StatusCreated, "Product added successfully!", product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateProduct", err)
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateProduct", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Product updated successfully!", product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	if err := h.productSvc.DeleteProduct(r.Context(), productID); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.DeleteProduct", err)
		return
	}
	log.Printf("AdminHandler.DeleteProduct: product %s deleted", productID)
	helpers.RespondOK(h.render, w, http.StatusOK, "Product deleted.", nil)
}

func (h *AdminHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateStock", err)
		return
	}
	if req.Stock == nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateStock", services.ErrInvalidQuantity)
		return
	}

	productID := mux.Vars(r)["id"]
	if err := h.productSvc.UpdateStock(r.Context(), productID, *req.Stock); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.UpdateStock", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Stock updated.", map[string]interface{}{
		"product_id": productID,
		"stock":      *req.Stock,
	})
}
