package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gptx-relay/internal/models"
)

// UpstreamError is returned when the provider responds with a non-2xx status
// before any streaming has started.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// UpstreamClient opens streaming chat-completion requests against an
// OpenAI-compatible provider. The provider credential is held server-side
// and never comes from the inbound request.
type UpstreamClient struct {
	endpoint     string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewUpstreamClient(endpoint, apiKey, defaultModel string, logger *zap.Logger) *UpstreamClient {
	return &UpstreamClient{
		endpoint:     endpoint,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		// Bounded connect timeout, no overall timeout: streamed responses
		// stay open for as long as the model generates.
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logger,
	}
}

// maxErrorBody bounds how much of a failed response we read back for the
// error message.
const maxErrorBody = 4 << 10

// StreamChat forwards the conversation to the provider with stream enabled
// and returns the raw response body. The caller owns the body and must close
// it; cancelling ctx aborts the in-flight read and releases the connection.
func (c *UpstreamClient) StreamChat(ctx context.Context, req models.ChatRequest) (io.ReadCloser, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream connect failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		c.logger.Warn("upstream rejected chat request",
			zap.Int("status", resp.StatusCode),
			zap.String("model", req.Model))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	return resp.Body, nil
}
