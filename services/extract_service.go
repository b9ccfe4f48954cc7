package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"back/models"
	"back/store"
)

// extractHistoryLimit caps how much conversation history feeds one
// extraction call.
const extractHistoryLimit = 200

// ExtractService pulls product items out of a conversation with one
// low-temperature single-shot completion. The model output is passed
// through verbatim: callers get whatever the model produced, valid JSON
// or not.
type ExtractService struct {
	store *store.Store
	llm   *LLMClient
}

// NewExtractService returns an extraction service.
func NewExtractService(st *store.Store, llm *LLMClient) *ExtractService {
	return &ExtractService{store: st, llm: llm}
}

// ExtractItems runs the extraction over the conversation's history and
// returns the model's reply text, best-effort a JSON array of
// {name, quantity?} objects.
func (s *ExtractService) ExtractItems(ctx context.Context, conversationID int64, model string) (string, error) {
	msgs, err := s.store.ListMessages(ctx, conversationID, extractHistoryLimit, 0)
	if err != nil {
		return "", err
	}

	var summary strings.Builder
	for i, m := range msgs {
		if i > 0 {
			summary.WriteString("\n\n")
		}
		speaker := "AI"
		if m.Role == models.RoleUser {
			speaker = "User"
		}
		summary.WriteString(speaker)
		summary.WriteString(": ")
		summary.WriteString(m.Content)
	}

	prompt := fmt.Sprintf(
		"Extract every product model mentioned in the conversation below.\n\n%s\n\n"+
			"Return a JSON array where each element has:\n"+
			"- name: the product model name (required)\n"+
			"- quantity: the quantity, if one was mentioned\n\n"+
			"Return only the JSON array, with no other text.",
		summary.String(),
	)

	resolvedModel, err := s.llm.ResolveModel(model)
	if err != nil {
		return "", err
	}

	content, err := s.llm.Chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, resolvedModel, 0.1)
	if err != nil {
		return "", err
	}
	if content == "" {
		content = "[]"
	}
	log.Info().Int64("conversation_id", conversationID).Int("messages", len(msgs)).Msg("items extracted")
	return content, nil
}
