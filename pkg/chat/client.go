// Package chat implements the client half of the gptx relay: a bounded
// in-memory conversation store, a streaming chat client for the gateway's
// SSE endpoint, and the accumulator that folds streamed deltas back into the
// store.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"time"
)

// UpstreamHTTPError is returned when the gateway answers a chat request with
// a non-success status before any streaming begins.
type UpstreamHTTPError struct {
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("chat request failed: HTTP %d", e.StatusCode)
}

// UploadError is returned when an upload is rejected or the response is
// missing its data field.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed: HTTP %d", e.StatusCode)
	}
	return "upload failed: " + e.Message
}

// ClientConfig holds configuration for the gateway client.
type ClientConfig struct {
	// BaseURL of the gateway, e.g. http://localhost:8787
	BaseURL string

	// AppKey is the shared secret sent in the X-App-Key header
	AppKey string

	// Model override; empty lets the gateway pick its default
	Model string

	// ConnectTimeout bounds connection establishment (default: 10s).
	// There is deliberately no overall timeout: streamed responses may be
	// arbitrarily long-lived.
	ConnectTimeout time.Duration

	// HTTPClient overrides the default transport, mainly for tests
	HTTPClient *http.Client
}

// Client talks to the gateway. Construct one explicitly and share it by
// reference; there is no package-level instance.
type Client struct {
	baseURL    string
	appKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
		}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		appKey:     cfg.AppKey,
		model:      cfg.Model,
		httpClient: httpClient,
	}
}

type chatRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// StreamChat posts the conversation to the gateway and returns the event
// stream. The caller must drain or Close the stream; cancelling ctx aborts
// the read and closes the connection.
func (c *Client) StreamChat(ctx context.Context, history []Message) (*Stream, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: history, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-App-Key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &UpstreamHTTPError{StatusCode: resp.StatusCode}
	}

	return newStream(resp.Body), nil
}

// Upload sends a small binary payload and returns the data URI the gateway
// echoes back.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload"`)
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-App-Key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &UploadError{StatusCode: resp.StatusCode}
	}

	var result struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &UploadError{Message: "invalid response body"}
	}
	if result.Data == "" {
		return "", &UploadError{Message: "missing data field"}
	}

	return result.Data, nil
}
