package services

import (
	"context"
	"path/filepath"
	"testing"

	"back/models"
	"back/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return st
}

func seedConversation(t *testing.T, st *store.Store, name string) *models.Conversation {
	t.Helper()
	conv, err := st.CreateConversation(context.Background(), store.CreateConversationParams{
		Name:      name,
		Status:    models.StatusActive,
		CreatedAt: 1000,
		UpdatedAt: 1000,
	})
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	return conv
}

func seedMessage(t *testing.T, st *store.Store, convID int64, role, content string, createdAt int64) {
	t.Helper()
	if _, err := st.AppendMessage(context.Background(), store.AppendMessageParams{
		ConversationID: convID,
		Role:           role,
		Content:        content,
		CreatedAt:      createdAt,
	}); err != nil {
		t.Fatalf("failed to append message: %v", err)
	}
}

func messageCount(t *testing.T, st *store.Store, convID int64) int {
	t.Helper()
	msgs, err := st.ListMessages(context.Background(), convID, 1000, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	return len(msgs)
}
