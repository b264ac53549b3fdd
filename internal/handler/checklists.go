package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/db"
	"github.com/ops-checklist/backend/internal/model"
	"github.com/ops-checklist/backend/internal/service"
)

type ChecklistHandler struct {
	svc *service.ChecklistService
}

func NewChecklistHandler(svc *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

// List godoc
// @Summary List generated checklists
// @Description Returns stored checklists ordered by creation time, newest first.
// @Tags checklists
// @Produce json
// @Success 200 {object} model.ChecklistListEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/checklists [get]
// @Security BearerAuth
func (h *ChecklistHandler) List(c *gin.Context) {
	list, err := h.svc.ListChecklists(c.Request.Context())
	if err != nil {
		log.Printf("[Checklist] Failed to list checklists: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch checklists"})
		return
	}

	c.JSON(http.StatusOK, model.ChecklistListEnvelope{
		Status: "success",
		Data:   list,
	})
}

// Detail godoc
// @Summary Get checklist detail
// @Tags checklists
// @Produce json
// @Param id path string true "Checklist ID"
// @Success 200 {object} model.ChecklistDetailEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/checklists/{id} [get]
// @Security BearerAuth
func (h *ChecklistHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	detail, err := h.svc.GetChecklistDetail(c.Request.Context(), id)
	if err != nil {
		if db.IsNoRows(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "checklist not found"})
			return
		}
		log.Printf("[Checklist] Failed to fetch checklist (id=%s): %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch checklist"})
		return
	}

	c.JSON(http.StatusOK, model.ChecklistDetailEnvelope{
		Status: "success",
		Data:   detail,
	})
}
