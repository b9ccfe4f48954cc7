package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"back/models"
	"back/services"
	"back/store"
)

const (
	listConversationsLimit = 200
	listMessagesLimit      = 500
)

// ConversationController handles conversation sync, listing, history and
// deletion.
type ConversationController struct {
	store *store.Store
	sync  *services.SyncService
}

// NewConversationController wires the conversation handlers.
func NewConversationController(st *store.Store, sync *services.SyncService) *ConversationController {
	return &ConversationController{store: st, sync: sync}
}

// Sync handles POST /api/conversations/sync.
func (cc *ConversationController) Sync(c *gin.Context) {
	var req services.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := cc.sync.Sync(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Int64("conversation_id", req.ID).Msg("sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync conversation"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// List handles GET /api/conversations.
func (cc *ConversationController) List(c *gin.Context) {
	convs, err := cc.store.ListConversations(c.Request.Context(), listConversationsLimit, 0)
	if err != nil {
		log.Error().Err(err).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
		return
	}

	out := make([]services.SyncResult, 0, len(convs))
	for _, conv := range convs {
		out = append(out, services.SyncResult{
			ID:        conv.ID,
			Title:     conv.Name,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type messageOut struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
	DeepThinking string `json:"deep_thinking,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Messages handles GET /api/conversations/:id/messages.
func (cc *ConversationController) Messages(c *gin.Context) {
	id, ok := cc.resolveConversation(c)
	if !ok {
		return
	}

	msgs, err := cc.store.ListMessages(c.Request.Context(), id, listMessagesLimit, 0)
	if err != nil {
		log.Error().Err(err).Int64("conversation_id", id).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	out := make([]messageOut, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageOut{
			ID:           strconv.FormatInt(m.ID, 10),
			Role:         m.Role,
			Content:      m.Content,
			Timestamp:    m.CreatedAt,
			DeepThinking: m.DeepThinking,
			Model:        m.Model,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/conversations/:id. The conversation and all
// of its messages go together.
func (cc *ConversationController) Delete(c *gin.Context) {
	id, ok := cc.resolveConversation(c)
	if !ok {
		return
	}

	if err := cc.store.DeleteConversationCascade(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		log.Error().Err(err).Int64("conversation_id", id).Msg("failed to delete conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Rename handles POST /api/conversations/:id/rename.
func (cc *ConversationController) Rename(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	id, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	if err := cc.store.RenameConversation(c.Request.Context(), id, req.Name, models.NowMillis()); err != nil {
		cc.respondUpdateError(c, id, err, "rename")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Pin handles POST /api/conversations/:id/pin.
func (cc *ConversationController) Pin(c *gin.Context) {
	var req struct {
		Pinned *bool `json:"pinned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pinned is required"})
		return
	}

	id, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	if err := cc.store.SetConversationPinned(c.Request.Context(), id, *req.Pinned); err != nil {
		cc.respondUpdateError(c, id, err, "pin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (cc *ConversationController) respondUpdateError(c *gin.Context, id int64, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	log.Error().Err(err).Int64("conversation_id", id).Str("op", op).Msg("conversation update failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update conversation"})
}

// resolveConversation parses the :id param and verifies the conversation
// exists, writing the error response itself when it does not.
func (cc *ConversationController) resolveConversation(c *gin.Context) (int64, bool) {
	id, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, false
	}
	if _, err := cc.store.GetConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return 0, false
		}
		log.Error().Err(err).Int64("conversation_id", id).Msg("conversation lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return 0, false
	}
	return id, true
}

func parseConversationID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
