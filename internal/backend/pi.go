package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duetchat/duet/internal/chat"
)

// stylerPrompt frames Pi as the voice that restyles Qwen's facts.
const stylerPrompt = "You are Pi, an AI assistant known for your friendly, supportive, and conversational tone. " +
	"A user asked a question, and another AI (Qwen) provided a detailed, factual response. Your task is to " +
	"rewrite Qwen's response using your signature style and personality while keeping it as a direct answer " +
	"to the original user question. It is CRITICAL that you retain ALL original facts, data, and key details " +
	"from Qwen's text. DO NOT add new facts. Remember your backstory and personality at all times."

// Endpoints per Pi version. The older inflection_3_pi deployment lives
// behind a different gateway path.
const (
	piURL31         = "https://api.inflection.ai/v1/chat/completions"
	piURLInflection = "https://api.inflection.ai/external/api/inference/openai/v1/chat/completions"
)

// ResolvePiURL maps a Pi version to its chat-completions endpoint.
func ResolvePiURL(version string) (string, error) {
	switch version {
	case "Pi-3.1":
		return piURL31, nil
	case "inflection_3_pi":
		return piURLInflection, nil
	default:
		return "", fmt.Errorf("invalid Pi version: %q", version)
	}
}

// PiConfig configures the conversational backend client.
type PiConfig struct {
	APIKey      string
	Version     string
	BaseURL     string // overrides the version-derived endpoint; used in tests
	Fold        FoldStrategy
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// PiClient talks to the hosted conversational API. Version and fold
// strategy may be adjusted between turns; a single call is in flight at
// a time, so no locking is needed.
type PiClient struct {
	cfg    PiConfig
	url    string
	client *http.Client
}

// NewPi creates a conversational backend client. The version must be
// one of the recognized Pi deployments unless BaseURL overrides it.
func NewPi(cfg PiConfig) (*PiClient, error) {
	url := cfg.BaseURL
	if url == "" {
		var err error
		url, err = ResolvePiURL(cfg.Version)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Fold == nil {
		cfg.Fold = UserFold{}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &PiClient{cfg: cfg, url: url, client: client}, nil
}

// Complete sends the folded request and returns Pi's reply. The draft
// comes from the reasoning backend; an empty draft answer degrades to a
// plain conversational turn.
func (c *PiClient) Complete(ctx context.Context, history []chat.Message, userInput string, draft Response) (Response, error) {
	msgs := make([]chat.Message, 0, len(history)+3)
	msgs = append(msgs, chat.System(stylerPrompt))
	msgs = append(msgs, c.cfg.Fold.Fold(history, userInput, draft)...)

	body := chatRequest{
		Model:       c.cfg.Version,
		Messages:    toWire(msgs),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := postChat(ctx, c.client, "pi", c.url, c.cfg.APIKey, body)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Answer: strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:  resp.Model,
	}, nil
}

// Version returns the configured Pi version.
func (c *PiClient) Version() string {
	return c.cfg.Version
}

// SetVersion switches the Pi deployment between turns.
func (c *PiClient) SetVersion(version string) error {
	url, err := ResolvePiURL(version)
	if err != nil {
		return err
	}
	c.cfg.Version = version
	if c.cfg.BaseURL == "" {
		c.url = url
	}
	return nil
}

// SetFold switches the fold strategy between turns.
func (c *PiClient) SetFold(fold FoldStrategy) {
	if fold != nil {
		c.cfg.Fold = fold
	}
}
