package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/threadline/storefront/app/handlers"
	"github.com/threadline/storefront/app/handlers/admin"
	"github.com/threadline/storefront/app/middlewares"
	"github.com/threadline/storefront/app/repositories"
	"github.com/threadline/storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

type Dependencies struct {
	Render   *render.Render
	Sessions sessions.SessionStore
	OpenCart handlers.CartOpener
	UserRepo repositories.UserRepositoryImpl

	// CSRFKey enables CSRF protection on every route when set.
	CSRFKey []byte
	Secure  bool

	UploadDir     string
	UploadBaseURL string

	Home     *handlers.HomeHandler
	Products *handlers.ProductHandler
	Auth     *handlers.AuthHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
	Admin    *admin.AdminHandler
}

func NewRouter(d Dependencies) *mux.Router {
	router := mux.NewRouter()

	if d.UploadDir != "" && d.UploadBaseURL != "" {
		prefix := "/" + strings.Trim(d.UploadBaseURL, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	router.Use(middlewares.SessionMiddleware(d.Sessions))
	router.Use(middlewares.CartCountMiddleware(d.OpenCart))
	if len(d.CSRFKey) > 0 {
		router.Use(middlewares.CSRFProtect(d.CSRFKey, d.Secure))
		router.Use(middlewares.CSRFTokenHeader)
	}

	requireAuth := middlewares.RequireAuth(d.Render)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/home", d.Home.Home).Methods("GET")
	api.HandleFunc("/products", d.Products.Products).Methods("GET")
	api.HandleFunc("/products/{id}", d.Products.ProductDetail).Methods("GET")
	api.HandleFunc("/products/{id}/reviews", d.Products.Reviews).Methods("GET")
	api.Handle("/products/{id}/reviews", requireAuth(http.HandlerFunc(d.Products.AddReview))).Methods("POST")
	api.HandleFunc("/categories", d.Products.Categories).Methods("GET")

	api.HandleFunc("/auth/register", d.Auth.Register).Methods("POST")
	api.HandleFunc("/auth/login", d.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/logout", d.Auth.Logout).Methods("POST")
	api.HandleFunc("/auth/me", d.Auth.Me).Methods("GET")

	api.HandleFunc("/cart", d.Cart.GetCart).Methods("GET")
	api.HandleFunc("/cart", d.Cart.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/items", d.Cart.AddItem).Methods("POST")
	api.HandleFunc("/cart/items/{productID}", d.Cart.UpdateItem).Methods("PUT")
	api.HandleFunc("/cart/items/{productID}", d.Cart.RemoveItem).Methods("DELETE")

	account := api.NewRoute().Subrouter()
	account.Use(requireAuth)
	account.HandleFunc("/profile", d.Auth.UpdateProfile).Methods("PUT")
	account.HandleFunc("/checkout/payment", d.Checkout.InitiatePayment).Methods("POST")
	account.HandleFunc("/checkout", d.Checkout.PlaceOrder).Methods("POST")
	account.HandleFunc("/orders", d.Orders.MyOrders).Methods("GET")

	adminRouter := router.PathPrefix("/admin/api").Subrouter()
	adminRouter.Use(middlewares.AdminAuthMiddleware(d.UserRepo, d.Render))
	adminRouter.HandleFunc("/dashboard", d.Admin.Dashboard).Methods("GET")
	adminRouter.HandleFunc("/reports/sales", d.Admin.SalesReport).Methods("GET")

	adminRouter.HandleFunc("/orders", d.Admin.Orders).Methods("GET")
	adminRouter.HandleFunc("/orders/stream", d.Admin.OrderStream).Methods("GET")
	adminRouter.HandleFunc("/orders/{id}/status", d.Admin.UpdateOrderStatus).Methods("PATCH")

	adminRouter.HandleFunc("/products", d.Admin.Products).Methods("GET")
	adminRouter.HandleFunc("/products", d.Admin.CreateProduct).Methods("POST")
	adminRouter.HandleFunc("/products/{id}", d.Admin.UpdateProduct).Methods("PUT")
	adminRouter.HandleFunc("/products/{id}", d.Admin.DeleteProduct).Methods("DELETE")
	adminRouter.HandleFunc("/products/{id}/stock", d.Admin.UpdateStock).Methods("PATCH")
	adminRouter.HandleFunc("/categories", d.Admin.CreateCategory).Methods("POST")
	adminRouter.HandleFunc("/categories/{id}", d.Admin.DeleteCategory).Methods("DELETE")

	adminRouter.HandleFunc("/billing", d.Admin.Sales).Methods("GET")
	adminRouter.HandleFunc("/billing", d.Admin.CreateSale).Methods("POST")
	adminRouter.HandleFunc("/uploads", d.Admin.Upload).Methods("POST")

	return router
}
