package router

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/net/websocket"
)

// WebsocketTransport dispatches capability calls over persistent websocket
// connections, one per endpoint, to a local inference gateway, grounded on
// GoCodeAlone-EvoSim's web_interface.go (websocket.JSON.Send/Receive
// framing), generalized from a game-state push channel to a
// request/response-per-call RPC channel.
type WebsocketTransport struct {
	origin string
	conns  map[string]*websocket.Conn // one persistent conn per endpoint
}

// NewWebsocketTransport builds a transport that dials lazily per endpoint,
// reusing one connection across calls to the same endpoint.
func NewWebsocketTransport(origin string) *WebsocketTransport {
	return &WebsocketTransport{origin: origin, conns: map[string]*websocket.Conn{}}
}

type wireRequest struct {
	Capability string         `json:"capability"`
	Model      string         `json:"model"`
	Payload    map[string]any `json:"payload"`
}

type wireResponse struct {
	Content string         `json:"content"`
	Raw     map[string]any `json:"raw"`
	Error   string         `json:"error,omitempty"`
}

func (t *WebsocketTransport) conn(endpoint string) (*websocket.Conn, error) {
	if c, ok := t.conns[endpoint]; ok {
		return c, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("router: parsing endpoint %q: %w", endpoint, err)
	}
	c, err := websocket.Dial(u.String(), "", t.origin)
	if err != nil {
		return nil, fmt.Errorf("router: dialing %q: %w", endpoint, err)
	}
	t.conns[endpoint] = c
	return c, nil
}

// Call sends one request/response round trip over the endpoint's
// websocket connection.
func (t *WebsocketTransport) Call(ctx context.Context, cfg ModelConfig, req Request) (Response, error) {
	conn, err := t.conn(cfg.Endpoint)
	if err != nil {
		return Response{}, err
	}
	if err := websocket.JSON.Send(conn, wireRequest{Capability: req.Capability, Model: cfg.Model, Payload: req.Payload}); err != nil {
		return Response{}, fmt.Errorf("router: sending request: %w", err)
	}
	var wire wireResponse
	if err := websocket.JSON.Receive(conn, &wire); err != nil {
		return Response{}, fmt.Errorf("router: receiving response: %w", err)
	}
	if wire.Error != "" {
		return Response{}, fmt.Errorf("router: remote error: %s", wire.Error)
	}
	return Response{Capability: req.Capability, Content: wire.Content, Raw: wire.Raw}, nil
}

// Stream sends one request and relays every subsequently received wire
// message as a StreamEvent until a "completed" or "error" message closes
// the exchange.
func (t *WebsocketTransport) Stream(ctx context.Context, cfg ModelConfig, req Request, events chan<- StreamEvent) error {
	conn, err := t.conn(cfg.Endpoint)
	if err != nil {
		return err
	}
	if err := websocket.JSON.Send(conn, wireRequest{Capability: req.Capability, Model: cfg.Model, Payload: req.Payload}); err != nil {
		return fmt.Errorf("router: sending stream request: %w", err)
	}
	events <- StreamEvent{Capability: req.Capability, Kind: StreamConnected}

	for {
		var wire struct {
			Kind  string `json:"kind"`
			Chunk string `json:"chunk"`
			Error string `json:"error"`
		}
		if err := websocket.JSON.Receive(conn, &wire); err != nil {
			return fmt.Errorf("router: reading stream frame: %w", err)
		}
		switch wire.Kind {
		case "chunk":
			events <- StreamEvent{Capability: req.Capability, Kind: StreamReceiving, Chunk: wire.Chunk}
		case "completed":
			events <- StreamEvent{Capability: req.Capability, Kind: StreamCompleted}
			return nil
		case "error":
			return fmt.Errorf("router: remote stream error: %s", wire.Error)
		}
	}
}
