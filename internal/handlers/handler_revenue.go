package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// revenueHandler handles the posting endpoint used by billing collaborators.
type revenueHandler struct {
	revenueService portssvc.RevenueSvcFacade
}

func newRevenueHandler(revenueService portssvc.RevenueSvcFacade) *revenueHandler {
	return &revenueHandler{revenueService: revenueService}
}

func registerRevenueRoutes(rg *gin.RouterGroup, revenueService portssvc.RevenueSvcFacade) {
	h := newRevenueHandler(revenueService)
	rg.POST("/revenue", h.recordRevenue)
}

// recordRevenue posts a billable event. A degraded outcome (queued instead
// of posted) is still a 202, never an error: the billing caller's own
// transaction must not fail because the ledger was busy.
func (h *revenueHandler) recordRevenue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for recordRevenue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.GetActorFromContext(c)
	entryID, err := h.revenueService.RecordRevenue(c.Request.Context(), req.ToRevenueEvent(), actor)
	if err != nil {
		respondError(c, err, "Failed to record revenue")
		return
	}

	resp := dto.RecordRevenueResponse{JournalEntryID: entryID, Queued: entryID == nil}
	status := http.StatusCreated
	if resp.Queued {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}
