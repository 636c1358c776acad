package provider

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/radha-ai/radha/internal/llm/runtime/local"
)

// LocalName is the local adapter's backend name.
const LocalName = "local"

// localRuntime is the slice of the runtime client the adapter needs.
// Narrowed for testability.
type localRuntime interface {
	Load(ctx context.Context, req local.LoadRequest) error
	Generate(ctx context.Context, req local.GenerateRequest) (*local.GenerateResponse, error)
}

// LocalConfig configures the local quantized-model adapter.
type LocalConfig struct {
	// ModelPath is the on-disk path of the model artifact.
	ModelPath string
	// RuntimeURL is the local inference daemon address.
	RuntimeURL string
	// Device selects the execution device (CPU/GPU/AUTO), passed through
	// opaquely to the runtime.
	Device string
}

// LocalAdapter wraps the on-device quantized-model runtime.
//
// The model is loaded lazily on first Generate and exactly once per process:
// concurrent first calls wait for the single load to finish, and a load
// failure is terminal for this adapter's lifetime.
type LocalAdapter struct {
	cfg     LocalConfig
	runtime localRuntime

	loadOnce   sync.Once
	loadErr    error
	loadFailed atomic.Bool
}

// NewLocalAdapter creates the local adapter. The runtime daemon is not
// contacted until the first Generate call.
func NewLocalAdapter(cfg LocalConfig) *LocalAdapter {
	return &LocalAdapter{cfg: cfg}
}

// newLocalAdapterWithRuntime injects a runtime client; used by tests.
func newLocalAdapterWithRuntime(cfg LocalConfig, rt localRuntime) *LocalAdapter {
	return &LocalAdapter{cfg: cfg, runtime: rt}
}

// Name returns "local".
func (a *LocalAdapter) Name() string {
	return LocalName
}

// Available reports whether the model artifact is present on disk and the
// runtime has not already failed to load it. It does not touch the runtime
// daemon. After a terminal load failure this returns false, so auto-mode
// selection resolves the cloud backend on the next request.
func (a *LocalAdapter) Available() bool {
	if a.loadFailed.Load() {
		return false
	}
	if a.cfg.ModelPath == "" {
		return false
	}
	_, err := os.Stat(a.cfg.ModelPath)
	return err == nil
}

// load connects to the runtime and asks it to load the model artifact.
func (a *LocalAdapter) load(ctx context.Context) {
	defer func() {
		if a.loadErr != nil {
			a.loadFailed.Store(true)
		}
	}()

	if a.runtime == nil {
		client, err := local.NewClient(a.cfg.RuntimeURL)
		if err != nil {
			a.loadErr = err
			return
		}
		a.runtime = client
	}

	a.loadErr = a.runtime.Load(ctx, local.LoadRequest{
		ModelPath: a.cfg.ModelPath,
		Device:    a.cfg.Device,
	})
}

// Generate formats the transcript for the local model and completes it.
func (a *LocalAdapter) Generate(ctx context.Context, req Request) (string, error) {
	if !a.Available() {
		return "", NewBackendError(LocalName, KindUnavailable, "model artifact not found: "+a.cfg.ModelPath, nil)
	}

	a.loadOnce.Do(func() { a.load(ctx) })
	if a.loadErr != nil {
		return "", NewBackendError(LocalName, KindUnavailable, "model load failed: "+a.loadErr.Error(), a.loadErr)
	}

	resp, err := a.runtime.Generate(ctx, local.GenerateRequest{
		Prompt:      formatChatML(req),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        []string{chatMLEnd},
	})
	if err != nil {
		kind := KindUnavailable
		if ctx.Err() == context.DeadlineExceeded {
			kind = KindTimeout
		}
		return "", NewBackendError(LocalName, kind, err.Error(), err)
	}

	text := cleanCompletion(resp.Text)
	if text == "" {
		return "", NewBackendError(LocalName, KindMalformed, "empty completion", nil)
	}

	return text, nil
}

// ChatML control tokens used by the local instruct model.
const (
	chatMLStart = "<|im_start|>"
	chatMLEnd   = "<|im_end|>"
)

// formatChatML renders the transcript in the local model's chat template,
// ending with an open assistant block for the model to complete.
func formatChatML(req Request) string {
	var sb strings.Builder
	for _, msg := range req.Messages() {
		sb.WriteString(chatMLStart)
		sb.WriteString(msg.Role)
		sb.WriteString("\n")
		sb.WriteString(msg.Content)
		sb.WriteString(chatMLEnd)
		sb.WriteString("\n")
	}
	sb.WriteString(chatMLStart)
	sb.WriteString(RoleAssistant)
	sb.WriteString("\n")
	return sb.String()
}

// cleanCompletion strips chat-template control tokens the runtime may echo.
func cleanCompletion(text string) string {
	if idx := strings.LastIndex(text, chatMLStart+RoleAssistant); idx >= 0 {
		text = text[idx+len(chatMLStart+RoleAssistant):]
	}
	text = strings.ReplaceAll(text, chatMLEnd, "")
	text = strings.ReplaceAll(text, chatMLStart, "")
	text = strings.ReplaceAll(text, "<|endoftext|>", "")
	return strings.TrimSpace(text)
}
