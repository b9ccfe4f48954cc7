package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"back/services"
)

// ExtractController runs item extraction over a conversation.
type ExtractController struct {
	extract *services.ExtractService
}

// NewExtractController wires the extraction handler.
func NewExtractController(extract *services.ExtractService) *ExtractController {
	return &ExtractController{extract: extract}
}

// ExtractItems handles POST /api/items/extract. The reply content is the
// model output verbatim; it is not validated as JSON here.
func (ec *ExtractController) ExtractItems(c *gin.Context) {
	var req struct {
		ConversationID int64  `json:"conversation_id" binding:"required"`
		Model          string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id is required"})
		return
	}

	content, err := ec.extract.ExtractItems(c.Request.Context(), req.ConversationID, req.Model)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Int64("conversation_id", req.ConversationID).Msg("item extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"choices": []gin.H{{"message": gin.H{"content": content}}},
	})
}
