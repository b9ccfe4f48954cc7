package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"back/config"
	"back/controllers"
	"back/metrics"
	"back/models"
	"back/routes"
	"back/services"
	"back/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
}

// newTestEnv builds the full router against a temp database and the
// given upstream LLM base URL.
func newTestEnv(t *testing.T, llmBaseURL string, stream bool) testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	cfg := config.Config{
		LLMAPIKey:        "test-key",
		LLMBaseURL:       llmBaseURL,
		LLMDefaultModel:  "test-model",
		LLMMaxTokens:     128,
		LLMTemperature:   0.7,
		ChatHistoryLimit: 200,
	}
	llm := services.NewLLMClient(cfg)
	m := metrics.New(prometheus.NewRegistry())

	router := routes.SetupRouter(routes.Deps{
		Chat:          controllers.NewChatController(llm, services.NewContextBuilder(st, cfg.ChatHistoryLimit), m, stream),
		Conversations: controllers.NewConversationController(st, services.NewSyncService(st)),
		Extract:       controllers.NewExtractController(services.NewExtractService(st, llm)),
		Files:         controllers.NewFileController(),
		Search:        controllers.NewSearchController(services.NewSearchService(cfg)),
		Metrics:       m,
	})
	return testEnv{router: router, store: st}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func seedConversationWithMessages(t *testing.T, st *store.Store, contents ...string) *models.Conversation {
	t.Helper()
	ctx := context.Background()
	conv, err := st.CreateConversation(ctx, store.CreateConversationParams{
		Name: "seeded", Status: models.StatusActive, CreatedAt: 1000, UpdatedAt: 1000,
	})
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	for i, content := range contents {
		if _, err := st.AppendMessage(ctx, store.AppendMessageParams{
			ConversationID: conv.ID,
			Role:           models.RoleUser,
			Content:        content,
			CreatedAt:      int64(1000 + i*1000),
		}); err != nil {
			t.Fatalf("failed to append message: %v", err)
		}
	}
	return conv
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
