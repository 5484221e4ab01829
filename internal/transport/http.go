package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"causalkv/internal/op"
)

// HTTPTransport POSTs operations to a peer's /replicate endpoint over
// a plain net/http client, with a per-request context timeout and an
// explicit status-code check.
type HTTPTransport struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPTransport creates a transport with the given per-request
// timeout. A few seconds is enough slack for a healthy peer on a LAN
// without letting one slow peer hold up a retry cycle for long.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client:  &http.Client{Timeout: timeout + time.Second},
		timeout: timeout,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, peer Peer, o op.Operation) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/replicate", peer.Addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to %s: %w", peer.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("peer %s returned HTTP %d", peer.ID, resp.StatusCode)
	}
	return nil
}
