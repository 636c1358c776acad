// Package local implements the HTTP client for the on-device quantized-model
// runtime daemon. The daemon owns the model weights; this client asks it to
// load a model artifact once and then serves raw-prompt completions.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the local inference runtime over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// allowedHosts is the list of hosts the runtime client will connect to.
// The runtime is on-device; anything else is a misconfiguration.
var allowedHosts = []string{
	"localhost",
	"127.0.0.1",
	"::1",
	"runtime", // Docker service name
}

// NewClient creates a runtime client with host validation.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8900"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid runtime URL scheme: %s (only http/https allowed)", parsedURL.Scheme)
	}

	if err := validateHost(parsedURL.Hostname()); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialHost, _, err := net.SplitHostPort(addr)
			if err != nil {
				dialHost = addr
			}

			// Re-validate at dial time in case of DNS rebinding.
			if err := validateHost(dialHost); err != nil {
				return nil, fmt.Errorf("connection blocked: %w", err)
			}

			dialer := &net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}
			return dialer.DialContext(ctx, network, addr)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Generation on CPU can be slow; the load call sets its own
			// deadline via context.
			Timeout:   5 * time.Minute,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func validateHost(host string) error {
	for _, allowed := range allowedHosts {
		if strings.EqualFold(host, allowed) {
			return nil
		}
	}
	return fmt.Errorf("runtime host not in allowlist: %s", host)
}

// LoadRequest asks the runtime to load a model artifact.
type LoadRequest struct {
	// ModelPath is the on-disk path of the quantized model directory.
	ModelPath string `json:"model_path"`
	// Device selects the execution device (CPU/GPU/AUTO), passed through
	// opaquely to the runtime.
	Device string `json:"device,omitempty"`
}

// GenerateRequest asks the runtime for a completion of a raw prompt.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// GenerateResponse is the runtime's completion.
type GenerateResponse struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Load instructs the runtime to load the model. The runtime keeps the model
// resident after a successful load; calling Load again for the same path is
// a no-op on the daemon side.
func (c *Client) Load(ctx context.Context, req LoadRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal load request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/load", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create load request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send load request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("runtime load error (status %d): %s", resp.StatusCode, string(msg))
	}

	return nil
}

// Generate produces a completion for a raw, already-formatted prompt.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send generate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("runtime error (status %d): %s", resp.StatusCode, string(msg))
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}

	return &out, nil
}

// Reachable checks whether the runtime daemon answers its health endpoint.
func (c *Client) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
