package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pngsmec/msme-registry-backend/config"
	"github.com/pngsmec/msme-registry-backend/internal/app/controller"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	smeController       *controller.SMEController
	duplicateController *controller.DuplicateController
	exportController    *controller.ExportController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	smeController *controller.SMEController,
	duplicateController *controller.DuplicateController,
	exportController *controller.ExportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		smeController:       smeController,
		duplicateController: duplicateController,
		exportController:    exportController,
		authMiddleware:      authMiddleware,
		config:              cfg,
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
			"message": "SMEC Registry API is running",
		})
	})

	// officer roles that can change records; readonly users can only read
	officerRoles := []string{model.RoleAdmin, model.RoleSMECOfficer, model.RoleProvincialOfficer}
	reviewRoles := []string{model.RoleAdmin, model.RoleSMECOfficer}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		smes := v1.Group("/smes")
		smes.Use(r.authMiddleware.Authenticate())
		{
			smes.GET("", r.smeController.List)
			smes.GET("/:id", r.smeController.Get)
			smes.GET("/:id/audit", r.smeController.AuditTrail)

			smes.POST("",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.Register,
			)
			smes.PUT("/:id",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.Update,
			)
			smes.POST("/:id/status",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.ChangeStatus,
			)
			smes.POST("/:id/verify",
				r.authMiddleware.RequireRole(reviewRoles...),
				r.smeController.Verify,
			)
			smes.POST("/:id/owners",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.AddOwner,
			)
			smes.POST("/:id/documents/upload-url",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.RequestUploadURL,
			)
			smes.POST("/:id/documents",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.AttachDocument,
			)
			smes.POST("/:id/programs",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.EnrollProgram,
			)
			smes.POST("/:id/referrals",
				r.authMiddleware.RequireRole(officerRoles...),
				r.smeController.AddFinanceReferral,
			)
		}

		duplicates := v1.Group("/duplicates")
		duplicates.Use(r.authMiddleware.Authenticate())
		{
			duplicates.GET("", r.duplicateController.List)
			duplicates.GET("/pending", r.duplicateController.PendingQueue)

			// detection and resolution change records; provincial officers
			// review their queue but central officers make the call
			duplicates.POST("/detect",
				r.authMiddleware.RequireRole(reviewRoles...),
				r.duplicateController.Detect,
			)
			duplicates.POST("/:id/resolve",
				r.authMiddleware.RequireRole(reviewRoles...),
				r.duplicateController.Resolve,
			)
		}

		exports := v1.Group("/exports")
		exports.Use(r.authMiddleware.Authenticate())
		{
			exports.GET("/smes", r.exportController.ExportSMEs)
			exports.GET("/duplicates", r.exportController.ExportDuplicates)
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
