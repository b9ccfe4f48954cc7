package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"back/store"
)

// systemPrompt is the fixed instruction that leads every prompt context.
const systemPrompt = "You are a procurement assistant. Answer the user's questions using the " +
	"conversation history and any document content included in the messages. " +
	"Be accurate and concise, and say so when you are unsure."

// ContextSource records which branch produced a prompt context, so the
// missing-conversation fallback is observable instead of silent.
type ContextSource int

const (
	// ContextNoConversation: no conversation id was supplied.
	ContextNoConversation ContextSource = iota
	// ContextHistory: history was loaded from the referenced conversation.
	ContextHistory
	// ContextNotFoundFallback: a conversation id was supplied but does
	// not exist; the context degrades to system + user. Intentional: the
	// client's id may be stale and the chat should still go through.
	ContextNotFoundFallback
)

// PromptContext is the ordered message list for one completion call:
// one system instruction, up to the configured number of most recent
// persisted messages in chronological order, then the new user turn.
type PromptContext struct {
	Messages []openai.ChatCompletionMessage
	Source   ContextSource
}

// ContextBuilder assembles prompt contexts from persisted history.
type ContextBuilder struct {
	store        *store.Store
	historyLimit int
}

// NewContextBuilder returns a builder that includes at most historyLimit
// persisted messages per context.
func NewContextBuilder(st *store.Store, historyLimit int) *ContextBuilder {
	return &ContextBuilder{store: st, historyLimit: historyLimit}
}

// Build produces the prompt context for one turn. conversationID 0 means
// no conversation. No token-count truncation happens here; the message
// count bound is the only limit.
func (b *ContextBuilder) Build(ctx context.Context, conversationID int64, userMessage string) (PromptContext, error) {
	pc := PromptContext{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
		Source: ContextNoConversation,
	}

	if conversationID != 0 {
		_, err := b.store.GetConversation(ctx, conversationID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			pc.Source = ContextNotFoundFallback
			log.Warn().Int64("conversation_id", conversationID).
				Msg("conversation not found, building context without history")
		case err != nil:
			return PromptContext{}, err
		default:
			history, err := b.store.ListRecentForContext(ctx, conversationID, b.historyLimit)
			if err != nil {
				return PromptContext{}, fmt.Errorf("failed to load history for conversation %d: %w", conversationID, err)
			}
			pc.Source = ContextHistory
			for _, m := range history {
				pc.Messages = append(pc.Messages, openai.ChatCompletionMessage{
					Role:    m.Role,
					Content: m.Content,
				})
			}
		}
	}

	pc.Messages = append(pc.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	return pc, nil
}
