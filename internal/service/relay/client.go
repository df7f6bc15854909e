package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/PM183/Bloom/internal/model/chat"
)

// FallbackReply is substituted when the provider answers 200 but the first
// choice is missing or empty. A malformed success still yields a bot message.
const FallbackReply = "Sorry, I couldn't generate a response."

// Reply is the uniform success shape handed back to the session layer.
type Reply struct {
	Text     string        `json:"text"`
	Category chat.Category `json:"category"`
}

// Client talks to the credential-hiding relay endpoint the same way the
// browser does: a single POST per user message, no retries.
type Client struct {
	httpClient *http.Client
	relayURL   string
}

// NewClient builds a relay client for the given endpoint URL.
func NewClient(relayURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		relayURL:   relayURL,
	}
}

type relayRequest struct {
	UserMessage string         `json:"userMessage"`
	Messages    []chat.Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Send forwards the new user message and the running history to the relay and
// extracts the first generated choice. Transport failures and non-2xx
// statuses come back as errors; the caller owns the user-visible fallback.
func (c *Client) Send(ctx context.Context, userMessage string, history []chat.Message) (Reply, error) {
	body, err := json.Marshal(relayRequest{UserMessage: userMessage, Messages: history})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[relay] request failed: %v", err)
		return Reply{}, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		log.Printf("[relay] unexpected status %d from %s", resp.StatusCode, c.relayURL)
		return Reply{}, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		log.Printf("[relay] failed to decode response: %v", err)
		return Reply{}, fmt.Errorf("failed to decode relay response: %w", err)
	}

	// A well-formed 200 with no usable choice is deliberately treated as a
	// soft success so the user always gets a bot message.
	text := FallbackReply
	if len(completion.Choices) > 0 && completion.Choices[0].Message.Content != "" {
		text = completion.Choices[0].Message.Content
	}

	return Reply{Text: text, Category: chat.CategoryGeneralWellness}, nil
}
