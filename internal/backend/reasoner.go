package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/duetchat/duet/internal/chat"
)

// reasonerPrompt frames Qwen as the analytical engine behind Pi's
// replies.
const reasonerPrompt = "You are Qwen, the analytical reasoning engine powering Pi's responses. " +
	"Pi excels at friendly conversation but relies on you for deep analysis, complex reasoning, " +
	"technical knowledge, and factual accuracy. Your role: provide concise yet complete analytical " +
	"answers that cover the essential facts, key concepts, and logical reasoning. Be precise and " +
	"well-structured, but avoid unnecessary verbosity. Focus on the core information Pi needs to " +
	"give an excellent answer. You handle the 'thinking' - Pi handles the 'talking'. Prioritize " +
	"accuracy, relevance, and analytical depth over length."

// ReasonerConfig configures the reasoning backend client.
type ReasonerConfig struct {
	URL         string // chat-completions endpoint of the vLLM server
	APIKey      string // optional bearer credential
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client // overrides Timeout when set; used in tests
}

// ReasonerClient talks to the self-hosted reasoning endpoint.
type ReasonerClient struct {
	cfg    ReasonerConfig
	client *http.Client
}

// NewReasoner creates a reasoning backend client.
func NewReasoner(cfg ReasonerConfig) *ReasonerClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ReasonerClient{cfg: cfg, client: client}
}

// Complete sends the history plus the new user input and splits the
// result into a reasoning trace and a final answer.
func (c *ReasonerClient) Complete(ctx context.Context, history []chat.Message, userInput string) (Response, error) {
	msgs := make([]chat.Message, 0, len(history)+2)
	msgs = append(msgs, chat.System(reasonerPrompt))
	msgs = append(msgs, history...)
	msgs = append(msgs, chat.User(userInput))

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    toWire(msgs),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := postChat(ctx, c.client, "reasoner", c.cfg.URL, c.cfg.APIKey, body)
	if err != nil {
		return Response{}, err
	}

	choice := resp.Choices[0].Message
	reasoning, answer := splitReasoning(choice.ReasoningContent, choice.Content)

	return Response{
		Answer:    answer,
		Reasoning: reasoning,
		Model:     resp.Model,
	}, nil
}

// splitReasoning separates the reasoning trace from the answer. The
// server's reasoning parser populates reasoning_content when enabled;
// otherwise the trace may arrive inline as a leading <think> block. If
// neither form is present the whole text is the answer.
func splitReasoning(reasoningContent, content string) (reasoning, answer string) {
	if reasoningContent != "" {
		return strings.TrimSpace(reasoningContent), strings.TrimSpace(content)
	}

	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "<think>") {
		return "", trimmed
	}

	rest := strings.TrimPrefix(trimmed, "<think>")
	idx := strings.Index(rest, "</think>")
	if idx < 0 {
		// Unterminated trace: nothing usable as an answer.
		return strings.TrimSpace(rest), ""
	}

	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+len("</think>"):])
}
