package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/index"
	"github.com/ops-checklist/backend/internal/model"
)

// queryEmbedder - 검색 쿼리 임베딩 인터페이스
type queryEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

// SearchHandler - 런북 검색 디버그 엔드포인트
// 파이프라인을 거치지 않고 인덱스를 직접 조회할 때 사용
type SearchHandler struct {
	embedder queryEmbedder
	index    index.VectorIndex
}

func NewSearchHandler(embedder queryEmbedder, idx index.VectorIndex) *SearchHandler {
	return &SearchHandler{embedder: embedder, index: idx}
}

// Search godoc
// @Summary Search runbook chunks
// @Description Embeds the query text and returns the top-K most similar runbook chunks, optionally filtered by resource shape.
// @Tags search
// @Accept json
// @Produce json
// @Param request body model.SearchRequest true "Search query"
// @Success 200 {object} model.SearchResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/search [post]
// @Security BearerAuth
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	k := req.K
	if k <= 0 {
		k = 5
	}

	vector, _, err := h.embedder.EmbedText(c.Request.Context(), req.Query)
	if err != nil {
		log.Printf("[Search] Failed to embed query: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "embedding failed"})
		return
	}

	chunks, err := h.index.Search(c.Request.Context(), vector, k, &model.SearchFilter{ResourceShape: req.Shape})
	if err != nil {
		log.Printf("[Search] Index search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, model.SearchResponse{
		Status: "success",
		Chunks: chunks,
	})
}
