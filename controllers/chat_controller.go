package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"back/metrics"
	"back/services"
)

// ChatController proxies chat completions to the upstream model,
// grounding each turn in the conversation's persisted history.
type ChatController struct {
	llm      *services.LLMClient
	contexts *services.ContextBuilder
	metrics  *metrics.Metrics
	stream   bool
}

// NewChatController wires the chat handler. stream selects between SSE
// streaming and single-shot responses for the whole process.
func NewChatController(llm *services.LLMClient, contexts *services.ContextBuilder, m *metrics.Metrics, stream bool) *ChatController {
	return &ChatController{llm: llm, contexts: contexts, metrics: m, stream: stream}
}

// ChatCompletions handles POST /api/chat/completions.
func (cc *ChatController) ChatCompletions(c *gin.Context) {
	var req struct {
		Model          string `json:"model"`
		Message        string `json:"message" binding:"required"`
		ConversationID int64  `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	model, err := cc.llm.ResolveModel(req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	pc, err := cc.contexts.Build(ctx, req.ConversationID, req.Message)
	if err != nil {
		log.Error().Err(err).Msg("failed to build prompt context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build conversation context"})
		return
	}
	log.Info().
		Str("model", model).
		Int64("conversation_id", req.ConversationID).
		Int("context_messages", len(pc.Messages)).
		Bool("history_fallback", pc.Source == services.ContextNotFoundFallback).
		Msg("chat completion request")

	if cc.stream {
		cc.streamCompletion(c, pc, model)
		return
	}

	content, err := cc.llm.Chat(ctx, pc.Messages, model, -1)
	cc.metrics.ObserveLLMRequest("single_shot", err)
	if err != nil {
		log.Error().Err(err).Msg("completion request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"choices": []gin.H{{"message": gin.H{"content": content}}},
	})
}

func (cc *ChatController) streamCompletion(c *gin.Context, pc services.PromptContext, model string) {
	ctx := c.Request.Context()

	stream, err := cc.llm.StreamChat(ctx, pc.Messages, model)
	cc.metrics.ObserveLLMRequest("stream", err)
	if errors.Is(err, services.ErrNotConfigured) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(ev services.StreamEvent) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		var werr error
		if ev.Kind == services.EventDone {
			_, werr = c.Writer.WriteString("data: [DONE]\n\n")
		} else {
			_, werr = fmt.Fprintf(c.Writer, "data: %s\n\n", ev.Payload)
		}
		if werr != nil {
			return false
		}
		c.Writer.Flush()
		cc.metrics.ObserveStreamEvent(eventKindLabel(ev.Kind))
		return true
	}

	if err != nil {
		// Pre-stream failure: the framing is already committed to SSE, so
		// the failure travels as a single error event, not a status code.
		log.Error().Err(err).Str("model", model).Msg("failed to open upstream stream")
		send(services.StreamEvent{Kind: services.EventError, Payload: services.ErrorFrame(err.Error())})
		return
	}

	services.TranslateStream(stream, send)
}

func eventKindLabel(kind services.StreamEventKind) string {
	switch kind {
	case services.EventDone:
		return "done"
	case services.EventError:
		return "error"
	default:
		return "delta"
	}
}
