package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"back/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return st
}

func mustCreateConversation(t *testing.T, st *Store, name string, pinned bool, createdAt, updatedAt int64) *models.Conversation {
	t.Helper()
	conv, err := st.CreateConversation(context.Background(), CreateConversationParams{
		Name:      name,
		Status:    models.StatusActive,
		Pinned:    pinned,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	return conv
}

func mustAppendMessage(t *testing.T, st *Store, convID int64, role, content string, createdAt int64) *models.Message {
	t.Helper()
	msg, err := st.AppendMessage(context.Background(), AppendMessageParams{
		ConversationID: convID,
		Role:           role,
		Content:        content,
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("failed to append message: %v", err)
	}
	return msg
}

func TestGetConversationNotFound(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.GetConversation(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListConversationsOrder(t *testing.T) {
	st := newTestStore(t)

	old := mustCreateConversation(t, st, "old", false, 1000, 1000)
	recent := mustCreateConversation(t, st, "recent", false, 2000, 5000)
	pinnedOld := mustCreateConversation(t, st, "pinned-old", true, 500, 500)

	convs, err := st.ListConversations(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("failed to list conversations: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(convs))
	}

	// Pinned conversations come first even when much older; the rest
	// sort by updated_at descending.
	want := []int64{pinnedOld.ID, recent.ID, old.ID}
	for i, conv := range convs {
		if conv.ID != want[i] {
			t.Errorf("position %d: expected conversation %d, got %d", i, want[i], conv.ID)
		}
	}
}

func TestListMessagesChronological(t *testing.T) {
	st := newTestStore(t)
	conv := mustCreateConversation(t, st, "c", false, 1000, 1000)

	mustAppendMessage(t, st, conv.ID, models.RoleUser, "first", 1000)
	mustAppendMessage(t, st, conv.ID, models.RoleAssistant, "second", 2000)
	mustAppendMessage(t, st, conv.ID, models.RoleUser, "third", 3000)

	msgs, err := st.ListMessages(context.Background(), conv.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt < msgs[i-1].CreatedAt {
			t.Errorf("messages out of order at %d: %d < %d", i, msgs[i].CreatedAt, msgs[i-1].CreatedAt)
		}
	}
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Errorf("unexpected message contents: %q ... %q", msgs[0].Content, msgs[2].Content)
	}
}

func TestListRecentForContext(t *testing.T) {
	st := newTestStore(t)
	conv := mustCreateConversation(t, st, "c", false, 1000, 1000)

	for i := 1; i <= 5; i++ {
		mustAppendMessage(t, st, conv.ID, models.RoleUser, string(rune('a'+i-1)), int64(i*1000))
	}

	msgs, err := st.ListRecentForContext(context.Background(), conv.ID, 3)
	if err != nil {
		t.Fatalf("failed to list recent messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// The 3 most recent, still in chronological order.
	want := []string{"c", "d", "e"}
	for i, m := range msgs {
		if m.Content != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], m.Content)
		}
	}
}

func TestDeleteConversationCascade(t *testing.T) {
	st := newTestStore(t)
	conv := mustCreateConversation(t, st, "c", false, 1000, 1000)
	other := mustCreateConversation(t, st, "other", false, 1000, 1000)
	mustAppendMessage(t, st, conv.ID, models.RoleUser, "hello", 1000)
	mustAppendMessage(t, st, other.ID, models.RoleUser, "keep me", 1000)

	if err := st.DeleteConversationCascade(context.Background(), conv.ID); err != nil {
		t.Fatalf("failed to delete conversation: %v", err)
	}

	if _, err := st.GetConversation(context.Background(), conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	msgs, err := st.ListMessages(context.Background(), conv.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages after cascade delete, got %d", len(msgs))
	}

	// Other conversations are untouched.
	kept, err := st.ListMessages(context.Background(), other.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list kept messages: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("expected 1 message in other conversation, got %d", len(kept))
	}

	if err := st.DeleteConversationCascade(context.Background(), conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestConversationUpdates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	conv := mustCreateConversation(t, st, "before", false, 1000, 1000)

	if err := st.RenameConversation(ctx, conv.ID, "after", 2000); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}
	if err := st.SetConversationPinned(ctx, conv.ID, true); err != nil {
		t.Fatalf("failed to pin: %v", err)
	}
	if err := st.TouchConversation(ctx, conv.ID, 3000); err != nil {
		t.Fatalf("failed to touch: %v", err)
	}

	got, err := st.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("failed to get conversation: %v", err)
	}
	if got.Name != "after" || !got.Pinned || got.UpdatedAt != 3000 {
		t.Errorf("unexpected conversation state: %+v", got)
	}
	if got.UpdatedAt < got.CreatedAt {
		t.Errorf("updated_at %d precedes created_at %d", got.UpdatedAt, got.CreatedAt)
	}

	if err := st.RenameConversation(ctx, 9999, "x", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing conversation, got %v", err)
	}
	if err := st.TouchConversation(ctx, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing conversation, got %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tx, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	conv, err := tx.CreateConversation(ctx, CreateConversationParams{
		Name: "doomed", Status: models.StatusActive, CreatedAt: 1, UpdatedAt: 1,
	})
	if err != nil {
		t.Fatalf("failed to create in tx: %v", err)
	}
	if _, err := tx.AppendMessage(ctx, AppendMessageParams{
		ConversationID: conv.ID, Role: models.RoleUser, Content: "gone", CreatedAt: 1,
	}); err != nil {
		t.Fatalf("failed to append in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}

	if _, err := st.GetConversation(ctx, conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rolled-back conversation to be absent, got %v", err)
	}
}
