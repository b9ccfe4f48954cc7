package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"back/models"
	"back/store"
)

// defaultConversationName is used when a sync creates a conversation
// without a title.
const defaultConversationName = "New conversation"

// SyncMessage is the optional single message carried by a sync call.
// MessageID is accepted for forward compatibility but not used for
// deduplication: retrying a sync that carries a message appends twice.
type SyncMessage struct {
	Role         string `json:"role" binding:"required"`
	Content      string `json:"content" binding:"required"`
	Timestamp    *int64 `json:"timestamp"`
	MessageID    string `json:"message_id"`
	DeepThinking string `json:"deep_thinking"`
	Model        string `json:"model"`
}

// SyncRequest is the client's create-or-update payload. Timestamps are
// epoch milliseconds; absent values fall back to server time. Title may
// be empty; creation falls back to the default name.
type SyncRequest struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Message   *SyncMessage `json:"message"`
	CreatedAt *int64       `json:"created_at"`
	UpdatedAt *int64       `json:"updated_at"`
}

// SyncResult echoes the resolved conversation.
type SyncResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// SyncService reconciles client-supplied conversation state with the
// store. Calls with the same id and no message are pure timestamp
// touches and safe to retry.
type SyncService struct {
	store *store.Store
}

// NewSyncService returns a sync service over the given store.
func NewSyncService(st *store.Store) *SyncService {
	return &SyncService{store: st}
}

// Sync resolves (or creates) the conversation and appends at most one
// message, as a single atomic unit.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	defer tx.Rollback()

	now := models.NowMillis()

	var conv *models.Conversation
	if req.ID != 0 {
		conv, err = tx.GetConversation(ctx, req.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return SyncResult{}, err
		}
	}

	if conv == nil {
		name := req.Title
		if name == "" {
			name = defaultConversationName
		}
		createdAt := models.MillisOr(req.CreatedAt, now)
		updatedAt := models.MillisOr(req.UpdatedAt, now)
		if updatedAt < createdAt {
			updatedAt = createdAt
		}
		conv, err = tx.CreateConversation(ctx, store.CreateConversationParams{
			Name:             name,
			FirstUserMessage: req.Title,
			Status:           models.StatusActive,
			CreatedAt:        createdAt,
			UpdatedAt:        updatedAt,
		})
		if err != nil {
			return SyncResult{}, err
		}
		log.Info().Int64("conversation_id", conv.ID).Str("title", name).Msg("conversation created")
	} else {
		// Update path only touches updated_at; renaming is a separate
		// explicit operation.
		updatedAt := models.MillisOr(req.UpdatedAt, now)
		if updatedAt < conv.CreatedAt {
			updatedAt = conv.CreatedAt
		}
		if err := tx.TouchConversation(ctx, conv.ID, updatedAt); err != nil {
			return SyncResult{}, err
		}
		conv.UpdatedAt = updatedAt
	}

	if req.Message != nil {
		if _, err := tx.AppendMessage(ctx, store.AppendMessageParams{
			ConversationID: conv.ID,
			Role:           req.Message.Role,
			Content:        req.Message.Content,
			DeepThinking:   req.Message.DeepThinking,
			Model:          req.Message.Model,
			CreatedAt:      models.MillisOr(req.Message.Timestamp, now),
		}); err != nil {
			return SyncResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return SyncResult{}, fmt.Errorf("failed to commit sync: %w", err)
	}

	return SyncResult{
		ID:        conv.ID,
		Title:     conv.Name,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}, nil
}
