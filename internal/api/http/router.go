package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/feedback-board/internal/api/http/handlers"
	"github.com/spec-kit/feedback-board/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Feedback       *handlers.FeedbackHandler
	Comments       *handlers.CommentsHandler
	Categories     *handlers.CategoriesHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	// "/logout" and "/me" must register before the admin "/:id" routes.
	users.Get("/logout", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Users.Logout)
	users.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Users.Me)

	adminUsers := users.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminUsers.Get("/", cfg.Users.List)
	adminUsers.Post("/", cfg.Users.Create)
	adminUsers.Get("/:id", cfg.Users.Get)
	adminUsers.Delete("/:id", cfg.Users.Delete)
	// Update allows self-service edits; the service enforces who may
	// change what, so it only needs authentication here.
	users.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Users.Update)

	feedback := api.Group("/feedback")
	feedback.Get("/", cfg.Feedback.List)
	// "/my" must register before "/:id" or fiber matches it as an id.
	feedback.Get("/my", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.ListMine)
	feedback.Get("/:id", cfg.Feedback.Get)
	feedback.Get("/:id/comments", cfg.Feedback.ListComments)
	feedback.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.Create)
	feedback.Post("/:id/comments", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.AddComment)
	feedback.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.Update)
	feedback.Put("/:id/upvote", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.Upvote)
	feedback.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedback.Delete)

	comments := api.Group("/comments")
	comments.Get("/", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Comments.List)
	comments.Get("/:id", cfg.Comments.Get)
	comments.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Comments.Update)
	comments.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Comments.Delete)

	categories := api.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/:id", cfg.Categories.Get)

	adminCategories := categories.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminCategories.Post("/", cfg.Categories.Create)
	adminCategories.Put("/:id", cfg.Categories.Update)
	adminCategories.Delete("/:id", cfg.Categories.Delete)

	api.Post("/uploads", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Uploads.Upload)
}
