// Package router dispatches AI-assisted calls (description generation,
// adaptation narration) to capability-indexed model configurations, with
// bounded concurrency, retry/backoff and optional streaming. Grounded on
// _examples/original_source/backend/app/ai/model_router.py's ModelRouter
// (per-capability routes, semaphore-bounded concurrency, 429-aware
// backoff, status/error stream events) and on the concurrency-gated
// worker pattern in leemwalker-thousand-worlds'
// internal/ai/queue/worker.go, reimplemented with
// golang.org/x/sync/semaphore instead of a hand-rolled channel gate.
package router

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/GoCodeAlone/evosim/internal/logging"
)

var logger = logging.For("router")

// ModelConfig is the provider/model binding for one capability.
type ModelConfig struct {
	Provider string
	Model    string
	Endpoint string
}

// Request carries one capability-dispatched call's payload.
type Request struct {
	Capability string
	Payload    map[string]any
}

// Response is a completed (possibly degraded) dispatch result.
type Response struct {
	Capability string
	Content    string
	Raw        map[string]any
	Error      string // non-empty marks a soft failure; Content/Raw may still be the fallback marker
}

// Transport performs one capability call. Implementations reach whatever
// HTTP/SDK surface the provider needs; the router only owns concurrency,
// retry and routing.
type Transport interface {
	Call(ctx context.Context, cfg ModelConfig, req Request) (Response, error)
}

// Diagnostics mirrors the original router's diagnostic counters (spec.md
// §4.7).
type Diagnostics struct {
	ActiveRequests int
	TotalRequests  int
	TotalTimeouts  int
}

// Router dispatches requests by capability, bounding in-flight calls with a
// semaphore and retrying transient failures with backoff (longer for
// 429/rate-limit errors).
type Router struct {
	routes      map[string]ModelConfig
	transport   Transport
	sem         *semaphore.Weighted
	maxRetries  int
	localOnly   bool
	diagnostics Diagnostics
}

// New builds a Router. When localOnly is true, every call short-circuits to
// a local-mode fallback response instead of invoking the transport
// (spec.md §4.7 "local-mode fallback").
func New(routes map[string]ModelConfig, transport Transport, concurrency, maxRetries int, localOnly bool) *Router {
	if concurrency <= 0 {
		concurrency = 1
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Router{
		routes:     routes,
		transport:  transport,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		maxRetries: maxRetries,
		localOnly:  localOnly,
	}
}

// Dispatch routes req to its capability's configured model, making up to
// maxRetries attempts in total with exponential backoff between them
// (longer for rate-limit errors), and returning a degraded Response with a
// non-empty Error after the last attempt fails rather than propagating the
// error (spec.md §7 "transient external failures").
func (r *Router) Dispatch(ctx context.Context, req Request) (Response, error) {
	cfg, ok := r.routes[req.Capability]
	if !ok {
		return Response{}, fmt.Errorf("router: unknown capability %q", req.Capability)
	}
	if r.localOnly {
		return Response{Capability: req.Capability, Content: "", Raw: map[string]any{
			"local_mode": true,
			"provider":   cfg.Provider,
			"model":      cfg.Model,
			"payload":    req.Payload,
		}}, nil
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Response{}, fmt.Errorf("router: acquiring concurrency slot: %w", err)
	}
	defer r.sem.Release(1)

	r.diagnostics.TotalRequests++
	r.diagnostics.ActiveRequests++
	defer func() { r.diagnostics.ActiveRequests-- }()

	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		resp, err := r.transport.Call(ctx, cfg, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() == context.DeadlineExceeded {
			r.diagnostics.TotalTimeouts++
		}
		if attempt == r.maxRetries-1 {
			break
		}

		sleep := backoffFor(attempt, err)
		logger.Warn().Str("capability", req.Capability).Int("attempt", attempt+1).Dur("backoff", sleep).Msg("router: retrying after transient failure")
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(sleep):
		}
	}

	return Response{
		Capability: req.Capability,
		Error:      fmt.Sprintf("%s (after %d attempts)", lastErr, r.maxRetries),
	}, nil
}

// backoffFor computes the retry delay: an exponential backoff starting at
// 0.5s and doubling per attempt, capped at 2s, except rate-limit errors
// (HTTP 429) get a longer 2s/4s/6s.../attempt schedule (spec.md §4.7,
// ported from model_router.py's astream retry loop).
func backoffFor(attempt int, err error) time.Duration {
	base := 0.5 * math.Pow(2, float64(attempt))
	if base > 2.0 {
		base = 2.0
	}
	if strings.Contains(err.Error(), "429") {
		base = 2.0 * float64(attempt+1)
	}
	return time.Duration(base * float64(time.Second))
}

// Diagnostics returns a snapshot of the router's counters.
func (r *Router) Diagnostics() Diagnostics {
	return r.diagnostics
}
