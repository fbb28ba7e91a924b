// Package llm implements structured extraction over an Ollama-style chat
// endpoint constrained to JSON output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonerrors "weather-assistant/internal/common/errors"
	"weather-assistant/internal/query"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type Client struct {
	config *Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(config *Config, log *zap.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(zap.String("component", "llm")),
	}
}

// Extract sends the conversation with format "json" and decodes the reply
// into a raw mapping. Every failure here is a transport failure, a
// non-JSON reply included: the endpoint promised JSON and did not deliver,
// which no repair prompt can fix. Timeouts surface through the request
// context and are indistinguishable from any other transport failure.
func (c *Client) Extract(ctx context.Context, conversation []query.Message) (map[string]interface{}, error) {
	msgs := make([]chatMessage, len(conversation))
	for i, m := range conversation {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	payload := chatRequest{
		Model:    c.config.Model,
		Messages: msgs,
		Stream:   false,
		Format:   "json",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.config.BaseURL, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, commonerrors.NewTransportError("llm", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != "" {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("endpoint error: %s", parsed.Error))
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("empty response content"))
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, commonerrors.NewTransportError("llm", fmt.Errorf("non-JSON content despite JSON mode: %w", err))
	}

	c.logger.Debug("extraction response decoded", zap.Int("turns", len(conversation)))
	return raw, nil
}
