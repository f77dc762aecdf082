package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/poiesic/newsroom/ai"
)

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 512

// client posts JSON to the inference API and decodes the JSON answer.
type client struct {
	host   string
	token  string
	http   *http.Client
	logger *slog.Logger
}

func newClient(config *ai.Config, logger *slog.Logger) *client {
	return &client{
		host:   config.Host,
		token:  config.Token,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// post sends body to {host}/models/{model} and decodes the response into out.
func (c *client) post(ctx context.Context, model string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint, err := url.JoinPath(c.host, "models", model)
	if err != nil {
		return fmt.Errorf("build endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("inference request failed", "model", model, "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("inference %s: unexpected status %d", model, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}
	return nil
}
