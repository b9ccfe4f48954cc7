package services

import (
	"context"
	"testing"

	"back/models"
)

func int64p(v int64) *int64 { return &v }

func TestSyncCreatesConversation(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)
	ctx := context.Background()

	res, err := svc.Sync(ctx, SyncRequest{
		Title:     "Q1 pricing",
		CreatedAt: int64p(1000),
		UpdatedAt: int64p(1000),
		Message: &SyncMessage{
			Role:      models.RoleUser,
			Content:   "What's the price of SKU-42?",
			Timestamp: int64p(1000),
		},
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if res.ID == 0 {
		t.Fatal("expected a server-assigned id")
	}
	if res.Title != "Q1 pricing" {
		t.Errorf("expected title echoed back, got %q", res.Title)
	}
	if res.CreatedAt != 1000 || res.UpdatedAt != 1000 {
		t.Errorf("expected client timestamps echoed, got %d/%d", res.CreatedAt, res.UpdatedAt)
	}

	conv, err := st.GetConversation(ctx, res.ID)
	if err != nil {
		t.Fatalf("created conversation not found: %v", err)
	}
	if conv.Status != models.StatusActive {
		t.Errorf("expected active status, got %q", conv.Status)
	}
	if conv.FirstUserMessage != "Q1 pricing" {
		t.Errorf("expected title snapshot, got %q", conv.FirstUserMessage)
	}
	if n := messageCount(t, st, res.ID); n != 1 {
		t.Errorf("expected 1 message, got %d", n)
	}
}

func TestSyncWithoutIDAlwaysCreates(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)
	ctx := context.Background()

	first, err := svc.Sync(ctx, SyncRequest{Title: "same title"})
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	second, err := svc.Sync(ctx, SyncRequest{Title: "same title"})
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if first.ID == second.ID {
		t.Error("sync without an id must create a distinct conversation each time")
	}
}

func TestSyncUnknownIDCreates(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)

	res, err := svc.Sync(context.Background(), SyncRequest{ID: 777, Title: "stale id"})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	// The stale client id is not reused; the server assigns its own.
	if res.ID == 0 {
		t.Fatal("expected a server-assigned id")
	}
}

func TestSyncTouchIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)
	ctx := context.Background()

	created, err := svc.Sync(ctx, SyncRequest{
		Title:     "c",
		CreatedAt: int64p(1000),
		UpdatedAt: int64p(1000),
		Message:   &SyncMessage{Role: models.RoleUser, Content: "hi", Timestamp: int64p(1000)},
	})
	if err != nil {
		t.Fatalf("create sync failed: %v", err)
	}

	for _, updatedAt := range []int64{2000, 3000} {
		res, err := svc.Sync(ctx, SyncRequest{
			ID:        created.ID,
			Title:     "ignored on update",
			UpdatedAt: int64p(updatedAt),
		})
		if err != nil {
			t.Fatalf("touch sync failed: %v", err)
		}
		if res.ID != created.ID {
			t.Fatalf("touch must resolve the same conversation, got %d", res.ID)
		}
		if res.UpdatedAt != updatedAt {
			t.Errorf("expected updated_at %d, got %d", updatedAt, res.UpdatedAt)
		}
		if res.Title != "c" {
			t.Errorf("update path must not rename, got %q", res.Title)
		}
	}

	if n := messageCount(t, st, created.ID); n != 1 {
		t.Errorf("touch syncs must not change message count, got %d", n)
	}
}

func TestSyncAppendsMessagePerCall(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)
	ctx := context.Background()

	created, err := svc.Sync(ctx, SyncRequest{Title: "c"})
	if err != nil {
		t.Fatalf("create sync failed: %v", err)
	}

	msg := &SyncMessage{
		Role:         models.RoleAssistant,
		Content:      "It costs 10.",
		Timestamp:    int64p(5000),
		DeepThinking: "checked the price list",
		Model:        "qwen-turbo",
		MessageID:    "client-msg-1",
	}
	// No dedup by message_id: sending the same payload twice appends twice.
	for i := 0; i < 2; i++ {
		if _, err := svc.Sync(ctx, SyncRequest{ID: created.ID, Title: "c", Message: msg}); err != nil {
			t.Fatalf("message sync %d failed: %v", i, err)
		}
	}

	msgs, err := st.ListMessages(ctx, created.ID, 10, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	got := msgs[0]
	if got.Role != models.RoleAssistant || got.Content != "It costs 10." {
		t.Errorf("unexpected message: %+v", got)
	}
	if got.CreatedAt != 5000 {
		t.Errorf("expected client timestamp 5000, got %d", got.CreatedAt)
	}
	if got.DeepThinking != "checked the price list" || got.Model != "qwen-turbo" {
		t.Errorf("optional fields not persisted: %+v", got)
	}
}

func TestSyncClampsUpdatedAt(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(st)

	res, err := svc.Sync(context.Background(), SyncRequest{
		Title:     "c",
		CreatedAt: int64p(5000),
		UpdatedAt: int64p(1000),
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if res.UpdatedAt < res.CreatedAt {
		t.Errorf("updated_at %d must not precede created_at %d", res.UpdatedAt, res.CreatedAt)
	}
}
