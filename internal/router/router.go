package router

import (
	"github.com/gin-gonic/gin"
	"github.com/medikart/medikart-backend/config"
	"github.com/medikart/medikart-backend/internal/app/controller"
	"github.com/medikart/medikart-backend/internal/middleware"
)

type Router struct {
	onboardingController *controller.OnboardingController
	uploadController     *controller.UploadController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	onboardingController *controller.OnboardingController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		onboardingController: onboardingController,
		uploadController:     uploadController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "MediKart API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		merchant := v1.Group("/merchant", r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("merchant", "admin"))
		{
			onboarding := merchant.Group("/onboarding")
			{
				onboarding.GET("/progress", r.onboardingController.GetProgress)
				onboarding.PUT("/progress", r.onboardingController.SaveProgress)
				onboarding.GET("/menu-template", r.onboardingController.DownloadMenuTemplate)
			}

			merchant.POST("/uploads/presign", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
