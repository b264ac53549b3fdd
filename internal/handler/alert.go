package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/model"
)

// alertProcessor - 파이프라인 인터페이스
type alertProcessor interface {
	ProcessAlert(ctx context.Context, alert model.Alert) (*model.DynamicChecklist, error)
}

type AlertHandler struct {
	pipeline alertProcessor
}

func NewAlertHandler(pipeline alertProcessor) *AlertHandler {
	return &AlertHandler{pipeline: pipeline}
}

// ProcessAlert godoc
// @Summary Process a normalized alert
// @Description Runs the enrich-retrieve-generate pipeline for a single alert and returns the generated checklist.
// @Tags alerts
// @Accept json
// @Produce json
// @Param request body model.Alert true "Normalized alert"
// @Success 200 {object} model.ProcessAlertResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/alerts [post]
// @Security BearerAuth
func (h *AlertHandler) ProcessAlert(c *gin.Context) {
	var alert model.Alert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if alert.Severity == "" {
		alert.Severity = model.SeverityInfo
	}
	if alert.StartsAt.IsZero() {
		alert.StartsAt = time.Now().UTC()
	}
	if !alert.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert id is required and severity must be INFO, WARNING, or CRITICAL"})
		return
	}

	checklist, err := h.pipeline.ProcessAlert(c.Request.Context(), alert)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "checklist generation failed"})
		return
	}

	c.JSON(http.StatusOK, model.ProcessAlertResponse{
		Status:    "success",
		Checklist: checklist,
	})
}
