// Package remote calls an adjustment routine hosted behind HTTP instead of
// spawning it locally. Error bodies of the form {"error": "..."} surface as the
// routine's own message.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/climate-adjust-service/internal/domain"
)

// maxErrorBody caps how much of a failed response is read into the error message.
const maxErrorBody = 4 << 10

// Client implements domain.Adjuster against an HTTP adjustment endpoint.
// It POSTs the request as JSON and expects a pandas orient="split" table back.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a remote adjustment client. The client sets no timeout of
// its own; callers bound requests through the context.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Adjust sends one adjustment request and decodes the result table.
func (c *Client) Adjust(ctx context.Context, req domain.AdjustmentRequest) (domain.Table, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("encode adjustment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.Table{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Table{}, fmt.Errorf("adjustment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Table{}, remoteError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("adjustment response received", "bytes", len(body))

	return domain.DecodeSplitTable(body)
}

// remoteError prefers the "error" field of a JSON error body over the raw body.
func remoteError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return errors.New(e.Error)
	}
	return fmt.Errorf("adjustment API error: status %d: %s", status, strings.TrimSpace(string(body)))
}
