package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/model"
)

type AlertmanagerHandler struct {
	pipeline alertProcessor
}

func NewAlertmanagerHandler(pipeline alertProcessor) *AlertmanagerHandler {
	return &AlertmanagerHandler{pipeline: pipeline}
}

// Webhook godoc
// @Summary Alertmanager webhook endpoint
// @Description Normalizes each firing alert in the payload and runs it through the checklist pipeline. Resolved alerts are skipped.
// @Tags alerts
// @Accept json
// @Produce json
// @Param request body model.AlertmanagerWebhook true "Alertmanager webhook payload"
// @Success 200 {object} model.AlertWebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/alerts/alertmanager [post]
func (h *AlertmanagerHandler) Webhook(c *gin.Context) {
	var webhook model.AlertmanagerWebhook

	// Alertmanager가 보낸 페이로드를 AlertmanagerWebhook 구조체로 변환
	if err := c.ShouldBindJSON(&webhook); err != nil {
		log.Printf("[Alertmanager] Failed to parse webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// status: firing(발생) 또는 resolved(해결)
	// alertCount: 이번 웹훅에 포함된 알림 개수
	log.Printf("[Alertmanager] Received webhook: status=%s, alertCount=%d, receiver=%s",
		webhook.Status, len(webhook.Alerts), webhook.Receiver)

	processed, skipped, failed := 0, 0, 0
	for _, raw := range webhook.Alerts {
		alert, ok := model.NormalizeAlertmanager(raw)
		if !ok {
			log.Printf("[Alertmanager] Skipping alert (name=%s, status=%s)",
				raw.Labels["alertname"], raw.Status)
			skipped++
			continue
		}

		log.Printf("[Alertmanager] Processing alert: name=%s, severity=%s, startsAt=%s",
			alert.Title, alert.Severity, alert.StartsAt.Format(time.RFC3339))

		if _, err := h.pipeline.ProcessAlert(c.Request.Context(), alert); err != nil {
			log.Printf("[Alertmanager] Pipeline failed (alert=%s): %v", alert.ID, err)
			failed++
			continue
		}
		processed++
	}

	c.JSON(http.StatusOK, model.AlertWebhookResponse{
		Status:     "received",
		AlertCount: len(webhook.Alerts),
		Processed:  processed,
		Skipped:    skipped,
		Failed:     failed,
	})
}
