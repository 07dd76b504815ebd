package routes

import (
	"github.com/collegeprep/organizer/internal/app/controllers"
	"github.com/collegeprep/organizer/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers groups every HTTP handler set
type Controllers struct {
	Auth     *controllers.AuthController
	Category *controllers.CategoryController
	Task     *controllers.TaskController
	Document *controllers.DocumentController
	Payment  *controllers.PaymentController
	Health   *controllers.HealthController
}

// Middlewares groups the route-level middleware
type Middlewares struct {
	Auth    *middleware.AuthMiddleware
	Payment *middleware.PaymentMiddleware
	// AuthLimit throttles register and login; nil disables it
	AuthLimit gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, m Middlewares) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(middleware.RouteNotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Check)

	requireAuth := m.Auth.JWTAuth()
	requirePaid := m.Payment.RequirePaidAccess()

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		limited := auth.Group("")
		if m.AuthLimit != nil {
			limited.Use(m.AuthLimit)
		}
		limited.POST("/register", c.Auth.Register)
		limited.POST("/login", c.Auth.Login)

		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/accept-invitation/:token", c.Auth.AcceptInvitation)
	}

	// --- Authenticated auth routes ---
	authed := auth.Group("", requireAuth)
	{
		authed.POST("/logout", c.Auth.Logout)
		authed.GET("/user", c.Auth.GetCurrentUser)
		authed.PATCH("/user/role", c.Auth.SelectRole)
		authed.POST("/invite-student", c.Auth.InviteStudent)
		authed.GET("/students", c.Auth.ListStudents)
	}

	// Listings are gated behind paid access; authentication always runs first
	v1.GET("/categories", requireAuth, requirePaid, c.Category.GetAllCategories)

	tasks := v1.Group("/tasks", requireAuth)
	{
		tasks.GET("", requirePaid, c.Task.ListTasks)
		tasks.POST("", c.Task.CreateTask)
		tasks.GET("/stats", c.Task.GetStats)
		tasks.GET("/templates", c.Task.GetTemplates)
		tasks.POST("/seed", c.Task.SeedTasks)
		tasks.PATCH("/:id", c.Task.UpdateTask)
		tasks.DELETE("/:id", c.Task.DeleteTask)
	}

	documents := v1.Group("/documents", requireAuth)
	{
		documents.GET("", requirePaid, c.Document.ListDocuments)
		documents.POST("", c.Document.CreateDocument)
		documents.PATCH("/:id", c.Document.UpdateDocument)
		documents.DELETE("/:id", c.Document.DeleteDocument)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("/webhook", c.Payment.Webhook)

		paymentsAuthed := payments.Group("", requireAuth)
		paymentsAuthed.GET("/check-access", c.Payment.CheckAccess)
		paymentsAuthed.POST("/create-payment-intent", c.Payment.CreatePaymentIntent)
		paymentsAuthed.POST("/confirm-payment", c.Payment.ConfirmPayment)
	}
}
