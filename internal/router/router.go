package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chat-api/internal/config"
	"chat-api/internal/handler"
	"chat-api/internal/middleware"
)

type Handlers struct {
	Account  *handler.AccountHandler
	User     *handler.UserHandler
	Role     *handler.RoleHandler
	Endpoint *handler.EndpointHandler
	Hub      *handler.HubHandler
	Health   *handler.HealthHandler
}

// New wires the HTTP surface. Note that no route carries a static auth
// requirement: the Authorize middleware consults the endpoint policies in
// the database on every request, so protection is data, not code.
func New(cfg *config.Config, authorize *middleware.AuthorizeMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(authorize.Handler)

	r.Get("/health", h.Health.Check)

	r.Route("/account", func(account chi.Router) {
		account.Post("/login", h.Account.Login)
		account.Post("/refresh", h.Account.Refresh)
		account.Get("/userauthinfo", h.Account.UserAuthInfo)
		account.Post("/resetpasswordsignin", h.Account.ResetPasswordSignIn)
		account.Post("/forgotpassword", h.Account.ForgotPassword)
		account.Post("/signupuser", h.Account.SignUp)
	})

	r.Route("/user", func(user chi.Router) {
		user.Post("/", h.User.Create)
		user.Get("/", h.User.List)
		user.Get("/{id}", h.User.Get)
		user.Put("/{id}", h.User.Edit)
		user.Delete("/{id}", h.User.Delete)
	})

	r.Route("/role", func(role chi.Router) {
		role.Post("/", h.Role.Create)
		role.Get("/", h.Role.List)
		role.Get("/{id}", h.Role.Get)
		role.Put("/{id}", h.Role.Edit)
		role.Delete("/{id}", h.Role.Delete)
	})

	r.Route("/endpoint", func(endpoint chi.Router) {
		endpoint.Post("/", h.Endpoint.Create)
		endpoint.Get("/", h.Endpoint.List)
		endpoint.Get("/{id}", h.Endpoint.Get)
		endpoint.Put("/{id}", h.Endpoint.Edit)
		endpoint.Delete("/{id}", h.Endpoint.Delete)
	})

	r.Route("/hub", func(hub chi.Router) {
		hub.Post("/messagesallclients", h.Hub.MessagesAllClients)
		hub.Get("/ws", h.Hub.ServeWS)
	})

	return r
}
