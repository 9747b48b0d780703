package router

import "context"

// StreamEventKind tags a streaming dispatch event (spec.md §4.7).
type StreamEventKind string

const (
	StreamConnecting StreamEventKind = "connecting"
	StreamConnected  StreamEventKind = "connected"
	StreamReceiving  StreamEventKind = "receiving"
	StreamCompleted  StreamEventKind = "completed"
	StreamError      StreamEventKind = "error"
)

// StreamEvent is one event in a streaming dispatch: either a status
// transition or a content chunk (set when Kind is StreamReceiving), or an
// error message (set when Kind is StreamError).
type StreamEvent struct {
	Capability string
	Kind       StreamEventKind
	Chunk      string
	Message    string
}

// StreamingTransport is implemented by transports that can stream a
// capability call as a sequence of chunks rather than one response.
type StreamingTransport interface {
	Transport
	Stream(ctx context.Context, cfg ModelConfig, req Request, events chan<- StreamEvent) error
}

// DispatchStream runs a streaming call, emitting status/error/chunk events
// on events and closing it when the call ends. Local mode emits a single
// error event per spec.md §4.7 ("streaming not supported for local
// provider"), matching model_router.py's astream behavior.
func (r *Router) DispatchStream(ctx context.Context, req Request, events chan<- StreamEvent) error {
	defer close(events)

	if r.localOnly {
		events <- StreamEvent{Capability: req.Capability, Kind: StreamError, Message: "streaming not supported for local provider"}
		return nil
	}

	cfg, ok := r.routes[req.Capability]
	if !ok {
		events <- StreamEvent{Capability: req.Capability, Kind: StreamError, Message: "unknown capability"}
		return nil
	}

	streaming, ok := r.transport.(StreamingTransport)
	if !ok {
		events <- StreamEvent{Capability: req.Capability, Kind: StreamError, Message: "transport does not support streaming"}
		return nil
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		events <- StreamEvent{Capability: req.Capability, Kind: StreamError, Message: err.Error()}
		return nil
	}
	defer r.sem.Release(1)

	events <- StreamEvent{Capability: req.Capability, Kind: StreamConnecting}
	if err := streaming.Stream(ctx, cfg, req, events); err != nil {
		events <- StreamEvent{Capability: req.Capability, Kind: StreamError, Message: err.Error()}
	}
	return nil
}
