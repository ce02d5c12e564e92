package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"gptx-relay/internal/models"
	"gptx-relay/internal/services"
)

// SSE wire constants shared with the upstream provider.
const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

type ChatHandler struct {
	upstream *services.UpstreamClient
	logger   *zap.Logger
}

func NewChatHandler(upstream *services.UpstreamClient, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{upstream: upstream, logger: logger}
}

// Stream relays a streamed chat completion to the caller as Server-Sent
// Events. Response headers are committed before the upstream connect, so any
// later failure is reported as an in-band `event: error` frame rather than
// an HTTP status.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "messages required", r))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming unsupported", r))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	body, err := h.upstream.StreamChat(r.Context(), req)
	if err != nil {
		h.writeErrorEvent(w, flusher, err)
		return
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.Contains(line, doneMarker) {
			// Normalize whatever done framing the provider uses
			w.Write([]byte(dataPrefix + doneMarker + "\n\n"))
			flusher.Flush()
			return
		}

		if strings.HasPrefix(line, dataPrefix) {
			w.Write([]byte(line + "\n\n"))
			flusher.Flush()
		}
		// Anything else (comments, stray framing) is dropped
	}

	if err := scanner.Err(); err != nil && r.Context().Err() == nil {
		h.writeErrorEvent(w, flusher, err)
	}
}

func (h *ChatHandler) writeErrorEvent(w http.ResponseWriter, flusher http.Flusher, err error) {
	msg := "upstream request failed"
	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		msg = upstreamErr.Error()
	} else if err != nil {
		msg = err.Error()
	}

	h.logger.Error("chat relay failed", zap.Error(err))

	payload, _ := json.Marshal(map[string]string{"error": msg})
	w.Write([]byte("event: error\n" + dataPrefix + string(payload) + "\n\n"))
	flusher.Flush()
}
