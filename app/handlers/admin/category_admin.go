package admin

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
)

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateCategory", err)
		return
	}

	category, err := h.productSvc.CreateCategory(r.Context(), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.CreateCategory", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusCreated, "Category added successfully!", category)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.productSvc.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.DeleteCategory", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Category deleted.", nil)
}
