package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handler "batch-reconciliation-backend/internal/handlers"
	service "batch-reconciliation-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, reconService *service.ReconciliationService, log *logrus.Logger, maxUploadSize int64) {
	reconHandler := handler.NewReconciliationHandler(reconService, log, maxUploadSize)
	templateHandler := handler.NewTemplateHandler(reconService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// File inspection for the mapping step
	api.POST("/ledger/inspect", reconHandler.InspectLedger)
	api.POST("/bank/inspect", reconHandler.InspectBank)

	// Reconciliation runs
	recon := api.Group("/reconciliation")
	recon.POST("/run", reconHandler.Run)
	recon.POST("/upload", reconHandler.Upload)
	recon.GET("/runs", reconHandler.ListRuns)
	recon.GET("/runs/:id", reconHandler.GetRun)
	recon.GET("/runs/:id/export", reconHandler.ExportRun)

	// Mapping templates
	tpl := api.Group("/templates")
	{
		tpl.GET("", templateHandler.List)
		tpl.POST("", templateHandler.Save)
		tpl.GET("/:name", templateHandler.Get)
		tpl.DELETE("/:name", templateHandler.Delete)
	}
}
