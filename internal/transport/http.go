package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"osrsloottracker.dev/plugin-core/internal/app/appconfig"
)

const (
	endpointDropBatch     = "/plugin/drops/batch"
	endpointCollectionLog = "/plugin/collection-log"
	endpointPets          = "/plugin/pets"
	endpointScreenshot    = "/plugin/upload-screenshot"
	endpointRecentDrops   = "/plugin/drops/recent"
	endpointStats         = "/plugin/stats"
	endpointServers       = "/plugin/servers"
	endpointAuthMe        = "/auth/me"
)

type HTTPClient struct {
	base   string
	tokens TokenSource
	http   *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(conf *appconfig.Config, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		base:   conf.APIEndpoint,
		tokens: tokens,
		http: &http.Client{
			Timeout: conf.HTTPTimeout,
		},
	}
}

func (c *HTTPClient) SubmitDropBatch(ctx context.Context, payload *DropBatchPayload) error {
	_, err := c.post(ctx, endpointDropBatch, payload)
	return err
}

func (c *HTTPClient) SubmitCollectionLog(ctx context.Context, payload *CollectionLogPayload) error {
	_, err := c.post(ctx, endpointCollectionLog, payload)
	return err
}

func (c *HTTPClient) SubmitPet(ctx context.Context, payload *PetPayload) error {
	_, err := c.post(ctx, endpointPets, payload)
	return err
}

func (c *HTTPClient) UploadScreenshot(ctx context.Context, png []byte, serverID string) (*ScreenshotResult, error) {
	if serverID == "" {
		return nil, errors.New("server id is required for screenshot upload")
	}

	body, err := c.post(ctx, endpointScreenshot, map[string]string{
		"image":    base64.StdEncoding.EncodeToString(png),
		"guild_id": serverID,
	})
	if err != nil {
		return nil, err
	}

	var result ScreenshotResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "decode screenshot upload response")
	}
	return &result, nil
}

func (c *HTTPClient) RecentDrops(ctx context.Context, limit int) ([]RecentDrop, error) {
	var drops []RecentDrop
	err := c.getJSON(ctx, endpointRecentDrops+"?limit="+strconv.Itoa(limit), &drops)
	return drops, err
}

func (c *HTTPClient) UserStats(ctx context.Context, rsn string) (*UserStats, error) {
	endpoint := endpointStats
	if rsn != "" {
		endpoint += "?rsn=" + url.QueryEscape(rsn)
	}
	var stats UserStats
	if err := c.getJSON(ctx, endpoint, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) Servers(ctx context.Context) ([]ServerInfo, error) {
	var servers []ServerInfo
	err := c.getJSON(ctx, endpointServers, &servers)
	return servers, err
}

func (c *HTTPClient) ServerChannels(ctx context.Context, serverID string) ([]ChannelInfo, error) {
	var channels []ChannelInfo
	err := c.getJSON(ctx, endpointServers+"/"+url.PathEscape(serverID)+"/channels", &channels)
	return channels, err
}

func (c *HTTPClient) ServerEvents(ctx context.Context, serverID string) ([]EventInfo, error) {
	var events []EventInfo
	err := c.getJSON(ctx, endpointServers+"/"+url.PathEscape(serverID)+"/events", &events)
	return events, err
}

func (c *HTTPClient) ValidateToken(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpointAuthMe, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build token validation request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "validate token")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// post performs a single attempt: a drop submission must never be retried
// into a duplicate by this layer.
func (c *HTTPClient) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode payload for %s", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", endpoint)
	}
	c.decorate(req)

	body, err := c.do(req)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("submission failed")
		return nil, err
	}
	return body, nil
}

// getJSON reads from the backend, retrying transient failures. Reads are
// idempotent so a few extra attempts are harmless.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	body, err := retry.DoWithData(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
		if err != nil {
			return nil, retry.Unrecoverable(errors.Wrapf(err, "build request for %s", endpoint))
		}
		c.decorate(req)
		return c.do(req)
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode >= http.StatusInternalServerError
			}
			return true
		}),
	)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("read from backend failed")
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrapf(err, "decode response from %s", endpoint)
	}
	return nil
}

func (c *HTTPClient) decorate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.tokens.AuthToken())
	req.Header.Set("Content-Type", "application/json")
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "perform request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}
