package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"back/models"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query set
// runs standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	dbtx dbtx
}

// CreateConversationParams are the writable fields of a new conversation.
type CreateConversationParams struct {
	Name             string
	FirstUserMessage string
	Status           string
	Pinned           bool
	CreatedAt        int64
	UpdatedAt        int64
}

// AppendMessageParams are the writable fields of a new message.
type AppendMessageParams struct {
	ConversationID int64
	Role           string
	Content        string
	DeepThinking   string
	Model          string
	CreatedAt      int64
}

const conversationColumns = "id, name, first_user_message, status, pinned, created_at, updated_at"

func scanConversation(row interface{ Scan(...any) error }) (*models.Conversation, error) {
	var c models.Conversation
	var firstMsg sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &firstMsg, &c.Status, &c.Pinned, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.FirstUserMessage = firstMsg.String
	return &c, nil
}

// GetConversation returns the conversation with the given id, or
// ErrNotFound when it does not exist.
func (q queries) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	row := q.dbtx.QueryRowContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE id = ?", id)
	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %d: %w", id, err)
	}
	return conv, nil
}

// CreateConversation inserts a new conversation and returns it with the
// server-assigned id.
func (q queries) CreateConversation(ctx context.Context, params CreateConversationParams) (*models.Conversation, error) {
	res, err := q.dbtx.ExecContext(ctx, `
		INSERT INTO conversations (name, first_user_message, status, pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		params.Name, params.FirstUserMessage, params.Status, params.Pinned, params.CreatedAt, params.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation id: %w", err)
	}
	return &models.Conversation{
		ID:               id,
		Name:             params.Name,
		FirstUserMessage: params.FirstUserMessage,
		Status:           params.Status,
		Pinned:           params.Pinned,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.UpdatedAt,
	}, nil
}

// TouchConversation sets updated_at on an existing conversation.
func (q queries) TouchConversation(ctx context.Context, id int64, updatedAt int64) error {
	return q.updateConversation(ctx, id,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", updatedAt, id)
}

// RenameConversation sets the display name and touches updated_at.
func (q queries) RenameConversation(ctx context.Context, id int64, name string, updatedAt int64) error {
	return q.updateConversation(ctx, id,
		"UPDATE conversations SET name = ?, updated_at = ? WHERE id = ?", name, updatedAt, id)
}

// SetConversationPinned flips the pinned flag. Pinning does not touch
// updated_at; it already moves the conversation in the listing order.
func (q queries) SetConversationPinned(ctx context.Context, id int64, pinned bool) error {
	return q.updateConversation(ctx, id,
		"UPDATE conversations SET pinned = ? WHERE id = ?", pinned, id)
}

func (q queries) updateConversation(ctx context.Context, id int64, query string, args ...any) error {
	res, err := q.dbtx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update conversation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListConversations returns conversations ordered pinned first, then by
// recency of update.
func (q queries) ListConversations(ctx context.Context, limit, offset int) ([]models.Conversation, error) {
	rows, err := q.dbtx.QueryContext(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		ORDER BY pinned DESC, updated_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

const messageColumns = "id, conversation_id, role, content, deep_thinking, model, created_at"

func scanMessage(rows *sql.Rows) (*models.Message, error) {
	var m models.Message
	var deepThinking, model sql.NullString
	if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &deepThinking, &model, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.DeepThinking = deepThinking.String
	m.Model = model.String
	return &m, nil
}

// AppendMessage inserts a new message row.
func (q queries) AppendMessage(ctx context.Context, params AppendMessageParams) (*models.Message, error) {
	res, err := q.dbtx.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, role, content, deep_thinking, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		params.ConversationID, params.Role, params.Content,
		nullable(params.DeepThinking), nullable(params.Model), params.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}
	return &models.Message{
		ID:             id,
		ConversationID: params.ConversationID,
		Role:           params.Role,
		Content:        params.Content,
		DeepThinking:   params.DeepThinking,
		Model:          params.Model,
		CreatedAt:      params.CreatedAt,
	}, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (q queries) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error) {
	rows, err := q.dbtx.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListRecentForContext returns the limit most recent messages of a
// conversation, still in chronological order.
func (q queries) ListRecentForContext(ctx context.Context, conversationID int64, limit int) ([]models.Message, error) {
	rows, err := q.dbtx.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	var msgs []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// DeleteConversationCascade removes the conversation and all its messages.
// Messages are deleted first so a failure cannot orphan them.
func (q queries) DeleteConversationCascade(ctx context.Context, id int64) error {
	if _, err := q.dbtx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete messages of conversation %d: %w", id, err)
	}
	res, err := q.dbtx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
