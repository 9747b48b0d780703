package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	failures int
	calls    int
	err      error
}

func (f *fakeTransport) Call(ctx context.Context, cfg ModelConfig, req Request) (Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return Response{}, f.err
	}
	return Response{Capability: req.Capability, Content: "ok"}, nil
}

func TestDispatchRetriesThenSucceeds(t *testing.T) {
	transport := &fakeTransport{failures: 2, err: errors.New("transient")}
	r := New(map[string]ModelConfig{"describe": {Provider: "local", Model: "m"}}, transport, 2, 5, false)

	resp, err := r.Dispatch(context.Background(), Request{Capability: "describe"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 3, transport.calls)
}

func TestDispatchExhaustsRetriesAndDegrades(t *testing.T) {
	transport := &fakeTransport{failures: 10, err: errors.New("boom")}
	r := New(map[string]ModelConfig{"describe": {Provider: "local", Model: "m"}}, transport, 2, 3, false)

	resp, err := r.Dispatch(context.Background(), Request{Capability: "describe"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 3, transport.calls)
}

func TestDispatchUnknownCapability(t *testing.T) {
	transport := &fakeTransport{}
	r := New(map[string]ModelConfig{}, transport, 1, 1, false)

	_, err := r.Dispatch(context.Background(), Request{Capability: "nope"})
	assert.Error(t, err)
}

func TestDispatchLocalModeSkipsTransport(t *testing.T) {
	transport := &fakeTransport{}
	r := New(map[string]ModelConfig{"describe": {Provider: "local", Model: "offline"}}, transport, 1, 1, true)

	payload := map[string]any{"prompt": "describe the tide pool biome"}
	resp, err := r.Dispatch(context.Background(), Request{Capability: "describe", Payload: payload})

	require.NoError(t, err)
	assert.Equal(t, 0, transport.calls)
	assert.Equal(t, true, resp.Raw["local_mode"])
	assert.Equal(t, "local", resp.Raw["provider"])
	assert.Equal(t, "offline", resp.Raw["model"])
	assert.Equal(t, payload, resp.Raw["payload"])
}

func TestBackoffForRateLimitIsLonger(t *testing.T) {
	normal := backoffFor(0, errors.New("server error"))
	rateLimited := backoffFor(0, errors.New("status 429"))
	assert.Greater(t, rateLimited, normal)
}

func TestStripMarkdownFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripMarkdownFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripMarkdownFence(`{"a":1}`))
}

func TestParseJSONContent(t *testing.T) {
	var out map[string]int
	ok := ParseJSONContent("```json\n{\"a\":1}\n```", &out)
	require.True(t, ok)
	assert.Equal(t, 1, out["a"])

	ok = ParseJSONContent("not json at all", &out)
	assert.False(t, ok)
}
