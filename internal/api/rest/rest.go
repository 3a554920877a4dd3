package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/apflow/invoice-pipeline/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Document intake (open, submitters are internal systems)
		v1.POST("/invoices", handler.UploadInvoice)

		// Status projection (public read access)
		v1.GET("/invoices/:request_id", handler.GetInvoiceStatus)

		// Pipeline stats (public read access)
		v1.GET("/stats", handler.GetStats)

		// Review endpoints (requires authentication - review actions are
		// the only path out of NEEDS_REVIEW and must be attributable)
		v1.GET("/review/queue", middleware.Auth(authCfg), handler.GetReviewQueue)
		v1.POST("/review/:request_id/approve", middleware.Auth(authCfg), handler.ApproveInvoice)
		v1.POST("/review/:request_id/reject", middleware.Auth(authCfg), handler.RejectInvoice)
	}
}
