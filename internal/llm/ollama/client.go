package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insight-backend/internal/insight"
)

// Client talks to an Ollama-compatible model backend over HTTP. It applies a
// hard per-call deadline and maps transport and HTTP failures into the typed
// error taxonomy; body interpretation is left to the normalizer.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient constructs a gateway client. An empty baseURL falls back to the
// local Ollama default; timeouts at or below zero fall back to the standard
// deadline.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "http://localhost:11434/api"
	}
	if timeout <= 0 {
		timeout = insight.DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeout,
		// The deadline is applied per request through the context so that
		// aborting a call releases the underlying socket immediately.
		httpClient: &http.Client{},
	}
}

// Generate issues one generation call. The context deadline covers the whole
// exchange; when it fires the in-flight request is aborted and a timeout
// error carrying the configured value is returned.
func (c *Client) Generate(ctx context.Context, genReq insight.GenerateRequest) (insight.GenerateResponse, error) {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return insight.GenerateResponse{}, insight.NewTransportError(fmt.Sprintf("encode generate request: %v", err), err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return insight.GenerateResponse{}, insight.NewTransportError(fmt.Sprintf("build generate request: %v", err), err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return insight.GenerateResponse{}, insight.NewTimeoutError(c.timeout.Milliseconds(), err)
		}
		return insight.GenerateResponse{}, insight.NewTransportError(fmt.Sprintf("model backend request failed: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return insight.GenerateResponse{}, insight.NewUpstreamHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return insight.GenerateResponse{}, insight.NewTimeoutError(c.timeout.Milliseconds(), err)
		}
		return insight.GenerateResponse{}, insight.NewTransportError(fmt.Sprintf("read model backend response: %v", err), err)
	}

	var parsed insight.GenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// A deviating envelope routes into the normalizer's fallback path
		// rather than failing the request.
		return insight.GenerateResponse{Response: string(body)}, nil
	}
	return parsed, nil
}

var _ insight.Generator = (*Client)(nil)
