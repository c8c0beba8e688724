package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fuuti/storefront-api/internal/api"
	apiMiddleware "github.com/fuuti/storefront-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.db,
		app.txTimeout,
		app.users,
		app.otps,
		app.passwords,
		app.sessions,
		app.jwtService,
	)
	accountHandler := api.NewAccountHandler(
		app.db,
		app.txTimeout,
		app.passwords,
		app.sessions,
		app.jwtService,
	)
	productHandler := api.NewProductHandler(app.products)
	orderHandler := api.NewOrderHandler(app.db, app.txTimeout, app.orders)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.sessions, app.users)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints.
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/activation/otp", authHandler.ActivationOTP)
		r.Patch("/auth/verify_email", authHandler.VerifyEmail)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/login/otp", authHandler.VerifyLoginOTP)
		r.Post("/auth/password", authHandler.PasswordResetOTP)
		r.Patch("/auth/password", authHandler.ResetPassword)

		// Protected endpoints.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", accountHandler.Me)
			r.Patch("/logout", accountHandler.Logout)
			r.Patch("/password", accountHandler.UpdatePassword)

			r.Get("/products", productHandler.List)
			r.Post("/products", productHandler.Create)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Create)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
