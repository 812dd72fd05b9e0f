package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler exposes the queue, alert, and health administration surface.
type adminHandler struct {
	syncService  portssvc.SyncSvcFacade
	reconService portssvc.ReconciliationSvcFacade
	alertService portssvc.AlertSvcFacade
}

func newAdminHandler(services *portssvc.ServiceContainer) *adminHandler {
	return &adminHandler{
		syncService:  services.Sync,
		reconService: services.Reconciliation,
		alertService: services.Alert,
	}
}

func registerAdminRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newAdminHandler(services)
	admin := rg.Group("/admin")

	admin.POST("/tasks", h.enqueueTask)
	admin.GET("/tasks", h.listTasks)
	admin.POST("/tasks/:operationID/retry", h.retryTask)
	admin.POST("/tasks/retry-all-failed", h.retryAllFailed)
	admin.GET("/sync-status/:kind/:referenceID", h.syncStatus)
	admin.GET("/alerts", h.listAlerts)
	admin.POST("/alerts/:alertID/resolve", h.resolveAlert)
	admin.GET("/health", h.healthReport)
	admin.POST("/reconcile", h.reconcile)
}

func (h *adminHandler) enqueueTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.EnqueueTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for enqueueTask", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	task, err := h.syncService.Enqueue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to enqueue task")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"operationID": task.OperationID})
}

func (h *adminHandler) listTasks(c *gin.Context) {
	state := domain.TaskState(c.DefaultQuery("status", string(domain.TaskPending)))

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 500"})
			return
		}
		limit = parsed
	}

	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}

	resp, err := h.syncService.ListTasks(c.Request.Context(), state, limit, nextToken)
	if err != nil {
		respondError(c, err, "Failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *adminHandler) retryTask(c *gin.Context) {
	operationID := c.Param("operationID")
	if err := h.syncService.ForceRetry(c.Request.Context(), operationID); err != nil {
		respondError(c, err, "Failed to retry task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"operationID": operationID, "status": "rescheduled"})
}

func (h *adminHandler) retryAllFailed(c *gin.Context) {
	count, err := h.syncService.ForceRetryAllFailed(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retry abandoned tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rescheduled": count})
}

// syncStatus reports whether a source record has reached the ledger and
// which journal entry it resolved to.
func (h *adminHandler) syncStatus(c *gin.Context) {
	kind := domain.ReferenceKind(c.Param("kind"))
	referenceID, err := strconv.ParseInt(c.Param("referenceID"), 10, 64)
	if err != nil || referenceID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenceID must be a positive integer"})
		return
	}

	synced, err := h.syncService.IsSynced(c.Request.Context(), kind, referenceID)
	if err != nil {
		respondError(c, err, "Failed to check sync status")
		return
	}
	entryID, err := h.syncService.ExistingEntryID(c.Request.Context(), kind, referenceID)
	if err != nil {
		respondError(c, err, "Failed to resolve journal entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":           kind,
		"referenceID":    referenceID,
		"synced":         synced,
		"journalEntryID": entryID,
	})
}

func (h *adminHandler) listAlerts(c *gin.Context) {
	alerts, err := h.alertService.ListUnresolved(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list alerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": dto.ToAlertResponses(alerts)})
}

func (h *adminHandler) resolveAlert(c *gin.Context) {
	alertID := c.Param("alertID")
	if err := h.alertService.Resolve(c.Request.Context(), alertID); err != nil {
		respondError(c, err, "Failed to resolve alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alertID": alertID, "status": "resolved"})
}

// healthReport captures a fresh snapshot and returns it with recent history.
func (h *adminHandler) healthReport(c *gin.Context) {
	snapshot, err := h.syncService.CaptureHealthSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to capture health snapshot")
		return
	}
	history, err := h.alertService.ListHealthHistory(c.Request.Context(), 24)
	if err != nil {
		respondError(c, err, "Failed to load health history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current": dto.ToHealthSnapshotResponse(snapshot),
		"history": dto.ToHealthSnapshotResponses(history),
	})
}

// reconcile triggers one reconciliation pass synchronously.
func (h *adminHandler) reconcile(c *gin.Context) {
	report, err := h.reconService.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to run reconciliation")
		return
	}
	c.JSON(http.StatusOK, report)
}
