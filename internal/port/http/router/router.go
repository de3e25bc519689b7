package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/metrics"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/handler"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/middleware"
)

type Handlers struct {
	Users         *handler.UserHandler
	Courses       *handler.CourseHandler
	Orders        *handler.OrderHandler
	Notifications *handler.NotificationHandler
	Analytics     *handler.AnalyticsHandler
	Layouts       *handler.LayoutHandler
}

// New assembles the /api/v1 surface: a public group, an authenticated group
// and an admin-only group.
func New(
	h Handlers,
	tokens *auth.TokenManager,
	resolver middleware.UserResolver,
	m *metrics.Manager,
	log logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log, m))

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/register", h.Users.Register)
		r.Post("/activate-user", h.Users.Activate)
		r.Post("/resend-activation", h.Users.ResendActivation)
		r.Post("/login", h.Users.Login)
		r.Post("/social-auth", h.Users.SocialAuth)
		r.Post("/refresh-token", h.Users.Refresh)

		r.Get("/courses", h.Courses.ListPublic)
		r.Get("/courses/{id}", h.Courses.GetPublic)
		r.Get("/layout/{type}", h.Layouts.GetByType)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, resolver, log))

			r.Get("/me", h.Users.Me)
			r.Post("/logout", h.Users.Logout)
			r.Put("/update-user", h.Users.UpdateProfile)
			r.Put("/update-password", h.Users.ChangePassword)
			r.Put("/update-avatar", h.Users.UpdateProfile)

			r.Get("/courses/{id}/content", h.Courses.GetContent)
			r.Put("/courses/{id}/review", h.Courses.AddReview)
			r.Put("/courses/{id}/question", h.Courses.AddQuestion)
			r.Put("/courses/{id}/question-reply", h.Courses.AddAnswer)

			r.Put("/create-order", h.Orders.Create)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, resolver, log))
			r.Use(middleware.RequireRoles(entity.RoleAdmin))

			r.Get("/admin/users", h.Users.ListUsers)
			r.Put("/admin/users/{id}/role", h.Users.UpdateRole)
			r.Delete("/admin/users/{id}", h.Users.DeleteUser)

			r.Get("/admin/courses", h.Courses.ListAll)
			r.Post("/admin/courses", h.Courses.Create)
			r.Put("/admin/courses/{id}", h.Courses.Update)
			r.Delete("/admin/courses/{id}", h.Courses.Delete)

			r.Get("/admin/orders", h.Orders.List)

			r.Get("/admin/notifications", h.Notifications.List)
			r.Put("/admin/notifications/{id}", h.Notifications.MarkRead)
			r.Delete("/admin/notifications/{id}", h.Notifications.Delete)

			r.Get("/admin/analytics/users", h.Analytics.Users)
			r.Get("/admin/analytics/courses", h.Analytics.Courses)
			r.Get("/admin/analytics/orders", h.Analytics.Orders)
			r.Get("/admin/stats", h.Analytics.Stats)

			r.Post("/admin/layout", h.Layouts.Create)
			r.Put("/admin/layout", h.Layouts.Edit)
		})
	})

	return r
}
