package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"reservation-system/config"
	"reservation-system/controllers"
	"reservation-system/services"
	"reservation-system/templates"
	"reservation-system/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  *zap.Logger
	Metrics *config.Metrics
	Tokens  services.TokenStore
}

func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}
	issuer, err := utils.NewTokenIssuer(deps.Config.JWT.Secret, deps.Config.JWT.Expiry())
	if err != nil {
		return nil, err
	}
	pages, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	identity := services.NewIdentityService(deps.DB, deps.Tokens)
	catalog := services.NewCatalogService(deps.DB)
	reservations := services.NewReservationService(deps.DB)
	feedback := services.NewFeedbackService(deps.DB)

	authController := &controllers.AuthController{
		Identity: identity,
		Issuer:   issuer,
		Cookie: controllers.SessionCookie{
			Name:   deps.Config.JWT.CookieName,
			Secure: deps.Config.JWT.CookieSecure,
		},
	}
	serviceController := &controllers.ServiceController{Catalog: catalog}
	reservationController := &controllers.ReservationController{
		Reservations: reservations,
		Catalog:      catalog,
		Created:      deps.Metrics.ReservationsCreated,
	}
	feedbackController := &controllers.FeedbackController{
		Feedback:  feedback,
		Submitted: deps.Metrics.FeedbackSubmitted,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.RequestID())
	r.Use(config.PerformanceLogger(deps.Logger))
	r.Use(deps.Metrics.Middleware())
	r.Use(utils.FlashSessions(deps.Config.JWT.Secret, deps.Config.JWT.CookieSecure))
	r.SetHTMLTemplate(pages)
	r.NoRoute(controllers.NotFound)

	r.GET("/health", healthCheck(deps.DB))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	cookieName := deps.Config.JWT.CookieName

	// Browser pages
	site := r.Group("/")
	site.Use(utils.SessionMiddleware(issuer, cookieName, deps.Tokens))
	{
		site.GET("/", serviceController.ListPage)
		site.GET("/register/", authController.RegisterPage)
		site.POST("/register/", authController.Register)
		site.GET("/login/", authController.LoginPage)
		site.POST("/login/", authController.Login)
		site.POST("/logout/", authController.Logout)

		private := site.Group("/")
		private.Use(utils.LoginRequired())
		{
			private.GET("/service/:id/", serviceController.DetailPage)

			private.GET("/reservations/", reservationController.ListPage)
			private.GET("/reservations/create/", reservationController.CreatePage)
			private.POST("/reservations/create/", reservationController.Create)
			private.GET("/reservations/update/:id/", reservationController.EditPage)
			private.POST("/reservations/update/:id/", reservationController.Update)
			private.GET("/reservations/edit/:id/", reservationController.EditPage)
			private.POST("/reservations/edit/:id/", reservationController.Update)
			private.GET("/reservations/delete/:id/", reservationController.DeleteConfirmPage)
			private.POST("/reservations/delete/:id/", reservationController.Delete)

			private.GET("/feedback/:reservation_id/", feedbackController.FormPage)
			private.POST("/feedback/:reservation_id/", feedbackController.Submit)

			private.GET("/profile/", authController.ProfilePage)
			private.POST("/profile/", authController.UpdateProfile)
		}
	}

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := api.Group("/auth")
	{
		auth.POST("/login", authController.APILogin)

		auth.Use(utils.AuthMiddleware(issuer, cookieName, deps.Tokens))
		auth.POST("/logout", authController.APILogout)
		auth.GET("/me", authController.Me)
	}

	protected := api.Group("")
	protected.Use(utils.AuthMiddleware(issuer, cookieName, deps.Tokens))
	{
		// Service routes
		svc := protected.Group("/services")
		{
			svc.GET("", serviceController.GetServices)
			svc.POST("", serviceController.CreateService)
			svc.GET("/:id", serviceController.GetService)
			svc.PUT("/:id", serviceController.ReplaceService)
			svc.PATCH("/:id", serviceController.PatchService)
			svc.DELETE("/:id", serviceController.DeleteService)
		}

		// Reservation routes, not scoped to the caller
		res := protected.Group("/reservations")
		{
			res.GET("", reservationController.GetReservations)
			res.POST("", reservationController.CreateReservation)
			res.GET("/:id", reservationController.GetReservation)
			res.PUT("/:id", reservationController.ReplaceReservation)
			res.PATCH("/:id", reservationController.PatchReservation)
			res.DELETE("/:id", reservationController.DeleteReservation)
		}

		// Feedback routes
		fb := protected.Group("/feedback")
		{
			fb.GET("", feedbackController.GetFeedback)
			fb.POST("", feedbackController.CreateFeedback)
		}
	}

	return r, nil
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}
