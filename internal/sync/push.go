package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PushItem is one mutation on the wire
type PushItem struct {
	ID       string          `json:"id"`
	Action   string          `json:"action"`
	DataType string          `json:"dataType"`
	Payload  json.RawMessage `json:"payload"`
}

// PushRequest is the body of POST /sync/push
type PushRequest struct {
	Items []PushItem `json:"items"`
}

// Pusher delivers outbox batches to the remote authority
type Pusher struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewPusher creates a pusher with a bounded per-request timeout
func NewPusher(endpoint, token string, timeout time.Duration) *Pusher {
	return &Pusher{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

// Push sends one batch. Success means the whole batch was accepted; any
// other outcome is an error and the caller must keep the batch intact.
func (p *Pusher) Push(ctx context.Context, items []PushItem) error {
	body, err := json.Marshal(PushRequest{Items: items})
	if err != nil {
		return fmt.Errorf("failed to marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/sync/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push rejected: HTTP %d, response: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
