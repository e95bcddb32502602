package handler

import (
	"net/http"

	"donation-import-backend/internal/models"
	"donation-import-backend/internal/repository"
	"donation-import-backend/internal/services/importing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ImportHandler struct {
	orchestrator *importing.Orchestrator
	batches      *repository.ImportBatchRepository
	donations    *repository.DonationRepository
}

func NewImportHandler(
	orchestrator *importing.Orchestrator,
	batches *repository.ImportBatchRepository,
	donations *repository.DonationRepository,
) *ImportHandler {
	return &ImportHandler{
		orchestrator: orchestrator,
		batches:      batches,
		donations:    donations,
	}
}

// Upload receives a processor export and runs the import synchronously. The
// response is the full batch summary; large-file asynchrony is the caller's
// concern.
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	summary, err := h.orchestrator.Run(header.Filename, file)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ImportHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.batches.GetByID(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ListDonations pages a batch's donations. With status=needs_attention it is
// the operator's pending-review queue.
func (h *ImportHandler) ListDonations(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	status := c.Query("status")
	cursor := c.Query("cursor")
	search := c.Query("search")
	limit := 50

	items, nextCursor, hasMore, err := h.donations.ListByBatch(batchID, status, cursor, limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

// ResolveDonation lets an operator clear a needs_attention donation after
// manual review, assigning it a final status.
func (h *ImportHandler) ResolveDonation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation ID"})
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if !models.ValidStatus(payload.Status) || payload.Status == models.StatusNeedsAttention {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resolution status"})
		return
	}

	donation, err := h.donations.Resolve(id, payload.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "donation resolved", "donation": donation})
}
