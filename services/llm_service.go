package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"back/config"
)

// ErrNotConfigured is returned before any upstream call when the LLM
// credentials or model name are missing.
var ErrNotConfigured = errors.New("llm is not configured")

// Delta is one incremental fragment of an in-progress model reply.
// Either field may be empty; both empty is a tolerated heartbeat.
type Delta struct {
	Content   string
	Reasoning string
}

// DeltaStream is a single-consumer, forward-only sequence of token
// deltas. Recv returns io.EOF on normal upstream completion and any
// other error on mid-stream failure; the fragments already delivered
// stand either way.
type DeltaStream interface {
	Recv() (Delta, error)
	Close()
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint. It
// is constructed once at startup and passed into the handlers that need
// it; there is no lazily-initialized global.
type LLMClient struct {
	client       *openai.Client
	apiKey       string
	defaultModel string
	maxTokens    int
	temperature  float32
}

// NewLLMClient builds a client from the application configuration.
func NewLLMClient(cfg config.Config) *LLMClient {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	clientCfg.BaseURL = cfg.LLMBaseURL
	return &LLMClient{
		client:       openai.NewClientWithConfig(clientCfg),
		apiKey:       cfg.LLMAPIKey,
		defaultModel: cfg.LLMDefaultModel,
		maxTokens:    cfg.LLMMaxTokens,
		temperature:  float32(cfg.LLMTemperature),
	}
}

// ResolveModel picks the model for a request: the requested one if set,
// otherwise the configured default. Fails fast when neither exists.
func (l *LLMClient) ResolveModel(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if l.defaultModel != "" {
		return l.defaultModel, nil
	}
	return "", fmt.Errorf("%w: no model requested and LLM_DEFAULT_MODEL is unset", ErrNotConfigured)
}

func (l *LLMClient) checkConfigured() error {
	if l.apiKey == "" {
		return fmt.Errorf("%w: LLM_API_KEY is unset", ErrNotConfigured)
	}
	return nil
}

// StreamChat opens one streaming completion call. A non-nil error here
// is a pre-stream failure; once a stream is returned, failures surface
// through Recv. Canceling ctx aborts the upstream call.
func (l *LLMClient) StreamChat(ctx context.Context, messages []openai.ChatCompletionMessage, model string) (DeltaStream, error) {
	if err := l.checkConfigured(); err != nil {
		return nil, err
	}
	stream, err := l.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   l.maxTokens,
		Temperature: l.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}
	return &openaiDeltaStream{stream: stream}, nil
}

// Chat performs one single-shot completion call and returns the full
// reply text. temperature overrides the configured default when >= 0.
func (l *LLMClient) Chat(ctx context.Context, messages []openai.ChatCompletionMessage, model string, temperature float32) (string, error) {
	if err := l.checkConfigured(); err != nil {
		return "", err
	}
	if temperature < 0 {
		temperature = l.temperature
	}
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   l.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("model", model).Msg("completion response had no choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// openaiDeltaStream adapts the go-openai stream to DeltaStream. Chunks
// without choices are heartbeats and are skipped.
type openaiDeltaStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiDeltaStream) Recv() (Delta, error) {
	for {
		chunk, err := s.stream.Recv()
		if err != nil {
			return Delta{}, err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		d := chunk.Choices[0].Delta
		return Delta{Content: d.Content, Reasoning: d.ReasoningContent}, nil
	}
}

func (s *openaiDeltaStream) Close() {
	s.stream.Close()
}
