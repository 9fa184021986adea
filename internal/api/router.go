package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/standupsync/standupsync/internal/api/handler"
	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/slack"
	"github.com/standupsync/standupsync/internal/standup"
	"github.com/standupsync/standupsync/internal/teamsettings"
	"github.com/standupsync/standupsync/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger       handler.DBPinger
	Version        string
	AuthService    *auth.Service
	UserService    *user.Service
	UserRepo       user.Repository
	StandupService *standup.Service
	SettingsRepo   teamsettings.Repository
	SlackClient    *slack.Client
	SlackVerifier  *slack.Verifier
	VerifySlackSig bool
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.UserService, deps.UserRepo)
	userHandler := handler.NewUserHandler(deps.UserService, deps.UserRepo)
	standupHandler := handler.NewStandupHandler(deps.StandupService)
	slackHandler := handler.NewSlackHandler(deps.SettingsRepo, deps.SlackClient, deps.UserRepo, deps.UserService, deps.StandupService)

	authed := middleware.Auth(deps.AuthService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/standups", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", standupHandler.List)
			r.Post("/", standupHandler.Create)
			r.Get("/range", standupHandler.ListRange)
			r.Get("/team/{date}", standupHandler.TeamByDay)
			r.Put("/{id}", standupHandler.Update)
			r.Delete("/{id}", standupHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", userHandler.Me)
			r.Get("/team", userHandler.Team)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/", userHandler.List)
				r.Post("/invite", userHandler.Invite)
				r.Put("/{id}/role", userHandler.UpdateRole)
				r.Put("/{id}/status", userHandler.UpdateStatus)
				r.Delete("/{id}", userHandler.Delete)
			})
		})

		r.Route("/slack", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Use(middleware.RequireAdmin())
				r.Get("/settings", slackHandler.Settings)
				r.Post("/configure", slackHandler.Configure)
				r.Post("/channels", slackHandler.Channels)
				r.Get("/members", slackHandler.Members)
				r.Post("/test", slackHandler.Test)
				r.Post("/disconnect", slackHandler.Disconnect)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.SlackSignature(deps.SlackVerifier, deps.VerifySlackSig))
				r.Post("/command", slackHandler.Command)
				r.Post("/update", slackHandler.QuickUpdate)
			})
		})
	})

	return r
}
