package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "donation-import-backend/internal/handlers"
	"donation-import-backend/internal/repository"
	"donation-import-backend/internal/services/importing"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	batchRepo := repository.NewImportBatchRepository(db)
	donationRepo := repository.NewDonationRepository(db)

	orchestrator := importing.NewOrchestrator(repository.NewTxRunner(db), batchRepo)
	importHandler := handler.NewImportHandler(orchestrator, batchRepo, donationRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Import batch routes
	imports := api.Group("/imports")
	imports.POST("", importHandler.Upload)
	imports.GET("/:batchId", importHandler.GetBatch)
	imports.GET("/:batchId/donations", importHandler.ListDonations)

	// Donation-level routes
	donations := api.Group("/donations")
	donations.POST("/:id/resolve", importHandler.ResolveDonation)
}
