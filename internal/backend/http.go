package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/duetchat/duet/internal/chat"
)

// maxResponseBytes caps how much of a response body is read. Generous
// enough for a 32k-token completion.
const maxResponseBytes = 8 << 20

// wireMessage is one role/content entry in a chat-completions request.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat-completions request body both backends accept.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the subset of the chat-completions response we read.
// ReasoningContent is vLLM's extension when a reasoning parser is
// configured on the server.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role             string `json:"role"`
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
}

// toWire converts domain messages to the request shape.
func toWire(msgs []chat.Message) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// postChat sends one chat-completions request and maps transport and
// HTTP failures onto the backend error taxonomy. name labels the
// backend in error messages. An empty apiKey omits the bearer header.
func postChat(ctx context.Context, client *http.Client, name, url, apiKey string, body chatRequest) (chatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return chatResponse{}, fmt.Errorf("%s: marshal request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, fmt.Errorf("%s: build request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		// Cancellation is the caller's doing, not a backend failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return chatResponse{}, err
		}
		return chatResponse{}, fmt.Errorf("%s: request failed: %v: %w", name, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return chatResponse{}, fmt.Errorf("%s: read response: %v: %w", name, err, ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return chatResponse{}, statusError(name, resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return chatResponse{}, fmt.Errorf("%s: unparseable response body: %v: %w", name, err, ErrProtocol)
	}
	if len(parsed.Choices) == 0 {
		return chatResponse{}, fmt.Errorf("%s: response has no choices: %w", name, ErrProtocol)
	}

	return parsed, nil
}

// statusError maps a non-success HTTP status onto the error taxonomy.
func statusError(name string, status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 256 {
		detail = detail[:256]
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: status %d: %s: %w", name, status, detail, ErrUnauthorized)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%s: status %d: %s: %w", name, status, detail, ErrUnavailable)
	default:
		return fmt.Errorf("%s: status %d: %s: %w", name, status, detail, ErrProtocol)
	}
}
