package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// GroqName is the Groq cloud adapter's backend name.
const GroqName = "groq"

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama-3.3-70b-versatile"
	groqCallTimeout  = 120 * time.Second
)

// groqClient is the slice of the OpenAI-compatible client the adapter needs.
type groqClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GroqConfig configures the Groq cloud adapter.
type GroqConfig struct {
	// APIKey authenticates against the Groq API. Empty key means the
	// adapter reports itself unavailable.
	APIKey string
	// Model is the completion model (default llama-3.3-70b-versatile).
	Model string
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
}

// GroqAdapter wraps the Groq chat-completions API. Groq speaks the OpenAI
// wire protocol, so the client is the stock OpenAI client pointed at the
// Groq endpoint. No retries: a failed call surfaces immediately and the
// caller decides whether another backend gets a shot.
type GroqAdapter struct {
	cfg    GroqConfig
	client groqClient
}

// NewGroqAdapter creates the Groq adapter.
func NewGroqAdapter(cfg GroqConfig) *GroqAdapter {
	if cfg.Model == "" {
		cfg.Model = groqDefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = groqBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: groqCallTimeout}

	return &GroqAdapter{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// newGroqAdapterWithClient injects a completion client; used by tests.
func newGroqAdapterWithClient(cfg GroqConfig, client groqClient) *GroqAdapter {
	if cfg.Model == "" {
		cfg.Model = groqDefaultModel
	}
	return &GroqAdapter{cfg: cfg, client: client}
}

// Name returns "groq".
func (a *GroqAdapter) Name() string {
	return GroqName
}

// Available reports whether an API key is configured. It does not guarantee
// the network call will succeed.
func (a *GroqAdapter) Available() bool {
	return a.cfg.APIKey != ""
}

// Generate sends the transcript to the Groq chat-completions endpoint.
func (a *GroqAdapter) Generate(ctx context.Context, req Request) (string, error) {
	if !a.Available() {
		return "", NewBackendError(GroqName, KindUnavailable, "API key not configured", nil)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	for _, msg := range req.Messages() {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", mapGroqError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewBackendError(GroqName, KindMalformed, "no choices in response", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", NewBackendError(GroqName, KindMalformed, "empty completion", nil)
	}

	return content, nil
}

// mapGroqError converts client errors to the backend error taxonomy.
func mapGroqError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return NewBackendError(GroqName, KindRateLimited, apiErr.Message, err)
		case apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return NewBackendError(GroqName, KindTimeout, apiErr.Message, err)
		default:
			return NewBackendError(GroqName, KindUnavailable, apiErr.Message, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewBackendError(GroqName, KindTimeout, "request deadline exceeded", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewBackendError(GroqName, KindTimeout, err.Error(), err)
	}

	// Remaining transport-level failures (DNS, connection refused).
	return NewBackendError(GroqName, KindUnavailable, err.Error(), err)
}
