package cmd

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/threadline/storefront/app/configs"
	"github.com/threadline/storefront/app/handlers"
	"github.com/threadline/storefront/app/handlers/admin"
	"github.com/threadline/storefront/app/routes"
	"github.com/threadline/storefront/app/utils/renderer"
	"github.com/threadline/storefront/app/utils/sessions"
)

const shutdownTimeout = 10 * time.Second

func Serve(env configs.ENV) error {
	keys, err := configs.LoadSessionKeysFromEnv(env)
	if err != nil {
		return err
	}

	app, err := NewApp(env)
	if err != nil {
		return err
	}
	defer app.Close()

	secure := env.IsProduction()
	rnd := renderer.New(!secure)
	sessionStore := sessions.NewCookieSessionStore(secure, keys.KeyPairs()...)
	openCart := handlers.NewCartOpener(sessions.NewCartSessions(env.SessionDir, secure, keys.KeyPairs()...))
	log.Println("✅ Session store initialized.")

	router := routes.NewRouter(routes.Dependencies{
		Render:        rnd,
		Sessions:      sessionStore,
		OpenCart:      openCart,
		UserRepo:      app.UserRepo,
		CSRFKey:       keys.AuthKey[:32],
		Secure:        secure,
		UploadDir:     env.UploadDir,
		UploadBaseURL: env.UploadBaseURL,
		Home:          handlers.NewHomeHandler(rnd, app.ProductSvc),
		Products:      handlers.NewProductHandler(app.ProductSvc, app.ReviewSvc, rnd),
		Auth:          handlers.NewAuthHandler(rnd, app.AuthSvc, sessionStore, openCart),
		Cart:          handlers.NewCartHandler(rnd, app.ProductSvc, app.CheckoutSvc, openCart),
		Checkout:      handlers.NewCheckoutHandler(rnd, app.CheckoutSvc, app.AuthSvc, openCart),
		Orders:        handlers.NewOrderHandler(rnd, app.OrderSvc),
		Admin:         admin.NewAdminHandler(rnd, app.ProductSvc, app.OrderSvc, app.ReportSvc, app.BillingSvc, app.Storage, app.OrderHub),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the signal so open order streams let shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
