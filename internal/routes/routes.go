package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/authgate-backend/internal/handlers"
	"github.com/AnshRaj112/authgate-backend/internal/middleware"
)

// Deps are the constructed handlers and middlewares the API is built from.
type Deps struct {
	Responder     *handlers.Responder
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	Health        *handlers.HealthHandler
	Authenticator *middleware.Authenticator
	// AuthLimiter guards the credential endpoints. Nil disables it.
	AuthLimiter func(http.Handler) http.Handler
}

func SetupRoutes(r chi.Router, d Deps) {
	h := d.Responder.Handle
	limited := d.AuthLimiter
	if limited == nil {
		limited = func(next http.Handler) http.Handler { return next }
	}

	r.NotFound(d.Responder.NotFound)
	r.MethodNotAllowed(d.Responder.MethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthCheck", h(d.Health.Health))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limited)
				r.Post("/sign-up", h(d.Auth.SignUp))
				r.Post("/sign-in", h(d.Auth.SignIn))
				r.Post("/verify", h(d.Auth.VerifyEmail))
				r.Post("/resend-verification", h(d.Auth.ResendVerification))
				r.Post("/forgot-password", h(d.Auth.ForgotPassword))
				r.Post("/reset-password/{token}", h(d.Auth.ResetPassword))
			})

			r.Post("/sign-out", h(d.Auth.SignOut))
			r.Post("/refresh-token", h(d.Auth.RefreshToken))
			r.Post("/social-login", h(d.Auth.SocialLogin))
			r.Post("/google-login", h(d.Auth.GoogleLogin))
			r.Post("/check-username", h(d.Auth.CheckUserName))

			r.Group(func(r chi.Router) {
				r.Use(d.Authenticator.Require)
				r.Put("/change-password", h(d.Auth.ChangePassword))
				r.Get("/login-activity", h(d.Auth.LoginActivity))
				r.Get("/profile", h(d.Profile.Profile))
				r.Patch("/profile-update", h(d.Profile.UpdateProfile))
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(d.Authenticator.Require)
			r.Get("/profile", h(d.Profile.Profile))
			r.Patch("/profile-update", h(d.Profile.UpdateProfile))
		})
	})
}
