package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chriskh369/studyhub-agent/app/database"
	"github.com/chriskh369/studyhub-agent/app/tasks"
	"github.com/gin-gonic/gin"
)

func NewHandler(ledgerRepo database.LedgerRepository, status *tasks.Status,
	scheduler tasks.TaskSchedulerInterface, sinkCount int, version string, buildNumber int) *Handler {
	return &Handler{
		ledgerRepo:  ledgerRepo,
		status:      status,
		scheduler:   scheduler,
		sinkCount:   sinkCount,
		version:     version,
		buildNumber: buildNumber,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.ledgerRepo.GetCount(); err == nil {
		health["ledger_size"] = count
	}
	health["sinks"] = h.sinkCount

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStatus(c *gin.Context) {
	snapshot := h.status.Snapshot()

	status := map[string]interface{}{
		"last_run":         snapshot,
		"build_number":     h.buildNumber,
		"update_available": snapshot.UpdateAvailable,
	}

	if count, err := h.ledgerRepo.GetCount(); err == nil {
		status["ledger_size"] = count
	} else {
		slog.Error("Database error", "operation", "get_count", "error", err)
	}

	c.JSON(http.StatusOK, status)
}

// APITriggerRefresh enqueues an immediate pipeline run. A run already in
// flight absorbs the request, so this endpoint is safe to hammer.
func (h *Handler) APITriggerRefresh(c *gin.Context) {
	if err := h.scheduler.TriggerRefresh(); err != nil {
		slog.Error("Failed to trigger refresh", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to schedule refresh"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}

func (h *Handler) APIListNotifications(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	notifications, err := h.ledgerRepo.GetRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, map[string]interface{}{
			"id":         n.ID,
			"fired_on":   n.FiredOn,
			"created_at": n.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": items,
		"total":         len(items),
	})
}
