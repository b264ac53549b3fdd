package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/model"
)

// runbookIngester - 인제스트 파이프라인 인터페이스
type runbookIngester interface {
	IngestAll(ctx context.Context) (model.IngestResult, error)
	IngestOne(ctx context.Context, path string) (model.IngestResult, error)
}

type IngestHandler struct {
	ingester runbookIngester
}

func NewIngestHandler(ingester runbookIngester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

// IngestAll godoc
// @Summary Re-ingest all runbooks
// @Description Lists every markdown runbook in storage, re-chunks, re-embeds and re-indexes them. Per-document failures are counted, not fatal.
// @Tags ingest
// @Produce json
// @Success 200 {object} model.IngestResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/ingest [post]
// @Security BearerAuth
func (h *IngestHandler) IngestAll(c *gin.Context) {
	result, err := h.ingester.IngestAll(c.Request.Context())
	if err != nil {
		log.Printf("[Ingest] Batch ingest request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "ingest failed"})
		return
	}

	c.JSON(http.StatusOK, model.IngestResponse{
		Status: "success",
		Result: result,
	})
}

// IngestOne godoc
// @Summary Ingest a single runbook
// @Description Ingests one markdown document by its storage path, replacing any previously indexed chunks for that path.
// @Tags ingest
// @Produce json
// @Param path query string true "Storage object path (e.g. runbooks/db-cpu.md)"
// @Success 200 {object} model.IngestResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/ingest/one [post]
// @Security BearerAuth
func (h *IngestHandler) IngestOne(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	result, err := h.ingester.IngestOne(c.Request.Context(), path)
	if err != nil {
		log.Printf("[Ingest] Single ingest request failed (path=%s): %v", path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "ingest failed"})
		return
	}

	c.JSON(http.StatusOK, model.IngestResponse{
		Status: "success",
		Result: result,
	})
}
