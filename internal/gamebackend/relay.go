package gamebackend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Relay issues outbound POSTs on behalf of the backend clients. It never
// returns an error: any transport failure, timeout or undecodable body
// yields nil, so callers inspect the parsed body or treat nil as failure.
// Statuses in the 2xx-5xx range are responses, not failures; the backend
// reports its own errors inside the body.
type Relay struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRelay creates a relay with the given per-request timeout
func NewRelay(timeout time.Duration, logger *slog.Logger) *Relay {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Post sends payload as JSON to rawURL with the given headers and query
// parameters, and returns the parsed response body, or nil on failure.
func (r *Relay) Post(ctx context.Context, rawURL string, payload any, headers map[string]string, query url.Values) json.RawMessage {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			r.logger.Warn("relay: failed to marshal payload", slog.String("error", err.Error()))
			return nil
		}
		bodyReader = bytes.NewReader(data)
	}

	if len(query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			r.logger.Warn("relay: bad url", slog.String("url", rawURL))
			return nil
		}
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bodyReader)
	if err != nil {
		r.logger.Warn("relay: failed to build request", slog.String("error", err.Error()))
		return nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("relay: request failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Warn("relay: failed to read response", slog.String("error", err.Error()))
		return nil
	}

	if !json.Valid(respBody) {
		r.logger.Warn("relay: non-JSON response",
			slog.String("url", rawURL),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	return json.RawMessage(respBody)
}
