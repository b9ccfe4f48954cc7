package services

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
)

// StreamEventKind classifies outbound stream events.
type StreamEventKind int

const (
	// EventDelta carries one token-delta frame.
	EventDelta StreamEventKind = iota
	// EventDone is the terminal sentinel after normal completion.
	EventDone
	// EventError carries the single error frame of a failed stream.
	EventError
)

// StreamEvent is one outbound event. Payload is the JSON frame body for
// delta and error events and nil for the terminal sentinel.
type StreamEvent struct {
	Kind    StreamEventKind
	Payload []byte
}

type deltaBody struct {
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type deltaChoice struct {
	Delta        deltaBody `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type deltaFrame struct {
	Choices []deltaChoice `json:"choices"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// DeltaFrame builds the wire frame for one delta. Empty fragments are
// omitted rather than serialized as empty strings.
func DeltaFrame(d Delta) []byte {
	frame := deltaFrame{Choices: []deltaChoice{{
		Delta: deltaBody{Content: d.Content, ReasoningContent: d.Reasoning},
	}}}
	payload, err := json.Marshal(frame)
	if err != nil {
		// Marshaling two string fields cannot fail; keep the stream alive
		// with an empty delta if it somehow does.
		log.Error().Err(err).Msg("failed to marshal delta frame")
		return []byte(`{"choices":[{"delta":{},"finish_reason":null}]}`)
	}
	return payload
}

// ErrorFrame builds the wire frame carrying a stream failure.
func ErrorFrame(msg string) []byte {
	payload, _ := json.Marshal(errorFrame{Error: msg})
	return payload
}

// TranslateStream pumps a delta stream into send, one outbound event per
// upstream delta in arrival order, closed by exactly one terminal
// sentinel or one error event. send reports whether the event was
// delivered; once it returns false the caller is gone and no further
// events are attempted. The loop is pull-driven: at most one event is in
// flight, so nothing buffers ahead of what the transport has flushed.
func TranslateStream(stream DeltaStream, send func(StreamEvent) bool) {
	defer stream.Close()

	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			send(StreamEvent{Kind: EventDone})
			return
		}
		if err != nil {
			// Mid-stream failure: the partial output already sent stands,
			// and the failure becomes a frame instead of a transport fault.
			log.Error().Err(err).Msg("upstream stream failed mid-way")
			send(StreamEvent{Kind: EventError, Payload: ErrorFrame(err.Error())})
			return
		}
		if !send(StreamEvent{Kind: EventDelta, Payload: DeltaFrame(delta)}) {
			return
		}
	}
}
