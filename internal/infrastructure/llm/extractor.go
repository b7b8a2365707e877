package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CafeteriaScanner/internal/config"
	"CafeteriaScanner/internal/domain"
	"CafeteriaScanner/internal/ports"
)

// Client implements ports.Extractor backed by OpenAI-compatible chat APIs.
// The model is instructed (via the system prompt) to reply with a JSON object
// matching the ExtractionResult schema.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Extractor = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.ExtractionConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Extract posts the message body as a user message and decodes the model's
// reply into the extraction schema.
func (c *Client) Extract(ctx context.Context, rawText string) (domain.ExtractionResult, error) {
	if c == nil {
		return domain.ExtractionResult{}, fmt.Errorf("extraction client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.ExtractionResult{}, fmt.Errorf("extraction client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": rawText},
		},
	})
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("marshal extraction payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("send extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ExtractionResult{}, fmt.Errorf("extraction error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var reply struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("decode chat reply: %w", err)
	}
	if len(reply.Choices) == 0 {
		return domain.ExtractionResult{}, fmt.Errorf("chat reply has no choices")
	}

	content := stripFences(reply.Choices[0].Message.Content)

	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("decode extraction result: %w", err)
	}

	return result, nil
}

// stripFences removes a markdown code fence wrapper; models add one even when
// told to reply with bare JSON.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You extract structured cafeteria order data from notification messages."
	}
	return prompt
}
