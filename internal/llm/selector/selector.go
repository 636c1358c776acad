// Package selector resolves a requested model mode to a live backend adapter.
package selector

import (
	"errors"
	"fmt"

	"github.com/radha-ai/radha/internal/llm/provider"
)

// Mode is the caller's backend request.
type Mode string

// Selection modes.
const (
	// ModeLocal explicitly requests the local quantized model.
	ModeLocal Mode = "local"
	// ModeCloud explicitly requests the cloud API.
	ModeCloud Mode = "cloud"
	// ModeAuto prefers local over cloud, in that fixed order.
	ModeAuto Mode = "auto"
)

// Selection errors.
var (
	// ErrModelUnavailable means an explicitly requested backend is not
	// available. Explicit requests never fall back silently.
	ErrModelUnavailable = errors.New("requested model unavailable")
	// ErrNoModelAvailable means auto mode found no available backend.
	ErrNoModelAvailable = errors.New("no model available")
	// ErrUnknownMode means the requested mode is not local, cloud or auto.
	ErrUnknownMode = errors.New("unknown model mode")
)

// ParseMode validates a mode string. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeCloud, ModeAuto:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Selector chooses which adapter answers a request. The auto-mode fallback
// chain is an explicit ordered list, not nested conditionals: precedence is
// visible and testable.
type Selector struct {
	local provider.Adapter
	cloud provider.Adapter
	chain []provider.Adapter
}

// New creates a selector over the two backends. The auto chain is fixed to
// [local, cloud]: the privacy-preserving option goes first and the order is
// never randomized.
func New(local, cloud provider.Adapter) *Selector {
	return &Selector{
		local: local,
		cloud: cloud,
		chain: []provider.Adapter{local, cloud},
	}
}

// Resolve returns the adapter that will answer a request in the given mode.
// Resolution happens per request; there is no sticky session-to-model
// binding, so availability changes show up on the next call.
func (s *Selector) Resolve(mode Mode) (provider.Adapter, error) {
	switch mode {
	case ModeLocal:
		return s.resolveExplicit(s.local)
	case ModeCloud:
		return s.resolveExplicit(s.cloud)
	case ModeAuto:
		for _, adapter := range s.chain {
			if adapter != nil && adapter.Available() {
				return adapter, nil
			}
		}
		return nil, ErrNoModelAvailable
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (s *Selector) resolveExplicit(adapter provider.Adapter) (provider.Adapter, error) {
	if adapter == nil {
		return nil, fmt.Errorf("%w: backend not configured", ErrModelUnavailable)
	}
	if !adapter.Available() {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, adapter.Name())
	}
	return adapter, nil
}
