package handlers

import (
	"log"
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/services"
	"github.com/threadline/storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render   *render.Render
	authSvc  *services.AuthService
	sessions sessions.SessionStore
	openCart CartOpener
}

func NewAuthHandler(r *render.Render, authSvc *services.AuthService, store sessions.SessionStore, openCart CartOpener) *AuthHandler {
	return &AuthHandler{render: r, authSvc: authSvc, sessions: store, openCart: openCart}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.Register", err)
		return
	}

	user, err := h.authSvc.Register(r.Context(), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.Register", err)
		return
	}
	if !h.signIn(w, r, user) {
		return
	}
	helpers.RespondOK(h.render, w, http.StatusCreated, "Account created successfully!", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.Login", err)
		return
	}

	user, err := h.authSvc.Login(r.Context(), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.Login", err)
		return
	}
	if !h.signIn(w, r, user) {
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Logged in successfully!", user)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	if err := h.sessions.SetUser(w, r, user.ID, user.Role); err != nil {
		log.Printf("❌ AuthHandler: failed to save session for user %s: %v", user.ID, err)
		helpers.RespondError(h.render, w, "AuthHandler.signIn", err)
		return false
	}
	log.Printf("AuthHandler: user %s signed in", user.ID)
	return true
}

// Logout ends the session and tears the cart down with it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.openCart(w, r).Teardown()
	if err := h.sessions.ClearSession(w, r); err != nil {
		log.Printf("AuthHandler.Logout: failed to clear session: %v", err)
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Logged out.", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	data := helpers.GetBaseData(r, nil)
	if userID := helpers.UserIDFromContext(r.Context()); userID != "" {
		user, err := h.authSvc.GetUser(r.Context(), userID)
		if err != nil {
			helpers.RespondError(h.render, w, "AuthHandler.Me", err)
			return
		}
		data["user"] = user
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "", data)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.UpdateProfile", err)
		return
	}

	user, err := h.authSvc.UpdateProfile(r.Context(), helpers.UserIDFromContext(r.Context()), in)
	if err != nil {
		helpers.RespondError(h.render, w, "AuthHandler.UpdateProfile", err)
		return
	}
	helpers.RespondOK(h.render, w, http.StatusOK, "Profile updated successfully!", user)
}
