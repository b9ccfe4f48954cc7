package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"back/services"
)

// SearchController proxies web searches to the configured search API.
type SearchController struct {
	search *services.SearchService
}

// NewSearchController wires the search handler.
func NewSearchController(search *services.SearchService) *SearchController {
	return &SearchController{search: search}
}

// Search handles POST /api/search.
func (sc *SearchController) Search(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
		Count int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	results, err := sc.search.Search(c.Request.Context(), req.Query, req.Count)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "web search is not configured"})
			return
		}
		log.Error().Err(err).Str("query", req.Query).Msg("web search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "web search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
