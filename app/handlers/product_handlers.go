package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

type ProductHandler struct {
	productSvc *services.ProductService
	reviewSvc  *services.ReviewService
	render     *render.Render
}

func NewProductHandler(productSvc *services.ProductService, reviewSvc *services.ReviewService, r *render.Render) *ProductHandler {
	return &ProductHandler{productSvc: productSvc, reviewSvc: reviewSvc, render: r}
}

func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.Products", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", products)
}

func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.productSvc.GetProductDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.ProductDetail", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", detail)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productSvc.ListCategories(r.Context())
	if err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.Categories", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", categories)
}

func (h *ProductHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewSvc.GetReviews(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.Reviews", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", reviews)
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var in services.ReviewInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.AddReview", err)
		return
	}

	productID := mux.Vars(r)["id"]
	userID := helpers.UserIDFromContext(r.Context())
	review, err := h.reviewSvc.AddReview(r.Context(), productID, userID, in)
	if err != nil {
		helpers.RespondError(h.render, w, "ProductHandler.AddReview", err)
		return
	}

	log.Printf("ProductHandler.AddReview: user %s reviewed product %s (%d stars)", userID, productID, review.Rating)
	helpers.RespondOK(h.render, w, http.StatusCreated, "Review submitted successfully!", review)
}
