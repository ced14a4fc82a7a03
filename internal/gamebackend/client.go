package gamebackend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jbcacc/cpm-backend/internal/model"
)

// Client talks to the game backend's cloud functions. Every call carries the
// player's bearer credential; vehicle saves additionally carry the
// device-identity header when configured.
type Client struct {
	relay  *Relay
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a game backend client
func NewClient(relay *Relay, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		relay:  relay,
		cfg:    cfg,
		logger: logger,
	}
}

// envelope is the backend's response wrapper. Result is either a
// JSON-encoded string that must be parsed a second time (fetches) or an
// ack value (saves).
type envelope struct {
	Result json.RawMessage `json:"result"`
}

// FetchPlayerRecord fetches the account's player record
func (c *Client) FetchPlayerRecord(ctx context.Context, credential string) (*model.PlayerRecord, error) {
	blob, err := c.fetchBlob(ctx, c.cfg.GetPlayerDataPath, credential)
	if err != nil {
		return nil, err
	}

	var rec model.PlayerRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("%w: player record: %s", model.ErrFetch, err)
	}
	return &rec, nil
}

// FetchVehicleList fetches the account's owned vehicles
func (c *Client) FetchVehicleList(ctx context.Context, credential string) ([]model.VehicleRecord, error) {
	blob, err := c.fetchBlob(ctx, c.cfg.GetAllCarsPath, credential)
	if err != nil {
		return nil, err
	}

	var cars []model.VehicleRecord
	if err := json.Unmarshal(blob, &cars); err != nil {
		return nil, fmt.Errorf("%w: vehicle list: %s", model.ErrFetch, err)
	}
	return cars, nil
}

// SavePlayerRecord submits a serialized player record. A missing or falsy
// acknowledgement is ErrSave.
func (c *Client) SavePlayerRecord(ctx context.Context, credential string, record json.RawMessage) error {
	return c.save(ctx, c.cfg.SavePlayerPath, credential, record, nil)
}

// SaveVehicle submits one serialized vehicle record under the credential
func (c *Client) SaveVehicle(ctx context.Context, credential string, vehicle json.RawMessage) error {
	var headers map[string]string
	if c.cfg.DeviceToken != "" {
		headers = map[string]string{"X-Device-Id": c.cfg.DeviceToken}
	}
	return c.save(ctx, c.cfg.SaveCarPath, credential, vehicle, headers)
}

// fetchBlob calls a fetch endpoint and unwraps the JSON-encoded result string
func (c *Client) fetchBlob(ctx context.Context, path, credential string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	body := c.relay.Post(ctx, c.endpoint(path), map[string]any{}, c.authHeaders(credential, nil), nil)
	if body == nil {
		return nil, fmt.Errorf("%w: no response from %s", model.ErrFetch, path)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Result) == 0 {
		return nil, fmt.Errorf("%w: %s returned no result", model.ErrFetch, path)
	}

	// The result is a string holding JSON, not the JSON itself
	var blob string
	if err := json.Unmarshal(env.Result, &blob); err != nil {
		return nil, fmt.Errorf("%w: %s result not a blob", model.ErrFetch, path)
	}
	if !json.Valid([]byte(blob)) {
		return nil, fmt.Errorf("%w: %s blob is not JSON", model.ErrParse, path)
	}

	return json.RawMessage(blob), nil
}

func (c *Client) save(ctx context.Context, path, credential string, record json.RawMessage, extraHeaders map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SaveTimeout)
	defer cancel()

	payload := map[string]any{"data": string(record)}

	body := c.relay.Post(ctx, c.endpoint(path), payload, c.authHeaders(credential, extraHeaders), nil)
	if !isAckSuccess(body) {
		c.logger.Warn("save not acknowledged", slog.String("path", path))
		return fmt.Errorf("%w: %s", model.ErrSave, path)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + path
}

func (c *Client) authHeaders(credential string, extra map[string]string) map[string]string {
	headers := map[string]string{"Authorization": "Bearer " + credential}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

// isAckSuccess decides whether a save response acknowledges success. The
// backend is inconsistent across deployments: the ack arrives as the number
// 1, the string "1", or a stringified response embedding a success marker.
// Anything else, including no response at all, is failure.
func isAckSuccess(body json.RawMessage) bool {
	if len(body) == 0 {
		return false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Result) == 0 {
		return false
	}

	var num float64
	if err := json.Unmarshal(env.Result, &num); err == nil {
		return num == 1
	}

	var str string
	if err := json.Unmarshal(env.Result, &str); err == nil {
		trimmed := strings.TrimSpace(str)
		return trimmed == "1" || strings.Contains(trimmed, `"success"`)
	}

	return false
}
