package transport

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"osrsloottracker.dev/plugin-core/internal/app/appconfig"
	"osrsloottracker.dev/plugin-core/internal/model"
)

type staticTokens string

func (s staticTokens) AuthToken() string { return string(s) }

func newTestClient(baseURL string) *HTTPClient {
	conf := &appconfig.Config{
		ConfigSpec: appconfig.ConfigSpec{
			APIEndpoint: baseURL,
			HTTPTimeout: 5 * time.Second,
		},
	}
	return NewHTTPClient(conf, staticTokens("tok"))
}

func TestSubmitDropBatchWirePayload(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.SubmitDropBatch(context.Background(), &DropBatchPayload{
		Username:    "Zezima",
		MonsterName: "Zulrah",
		DropType:    "ITEM_DROP",
		Items:       []model.DropItem{{Name: "Tanzanite fang", Quantity: 1, Value: 2500000}},
		TotalValue:  2500000,
		Destinations: []Destination{
			{GuildID: "srv-1", ChannelIDs: []string{"ch-1"}, EventID: "evt"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/plugin/drops/batch", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Zezima", gjson.Get(gotBody, "username").String())
	assert.Equal(t, "Zulrah", gjson.Get(gotBody, "monster_name").String())
	assert.Equal(t, "Tanzanite fang", gjson.Get(gotBody, "items.0.item_name").String())
	assert.Equal(t, int64(2500000), gjson.Get(gotBody, "total_value").Int())
	assert.Equal(t, "srv-1", gjson.Get(gotBody, "destinations.0.guild_id").String())
	assert.Equal(t, "ch-1", gjson.Get(gotBody, "destinations.0.channel_ids.0").String())
	assert.Equal(t, "evt", gjson.Get(gotBody, "destinations.0.event_id").String())
}

func TestSubmitIsNeverRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.SubmitCollectionLog(context.Background(), &CollectionLogPayload{
		Username: "Zezima",
		ItemName: "Ranger boots",
	})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestReadsRetryTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"total_drops": 7}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	stats, err := c.UserStats(context.Background(), "Zezima")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalDrops)
	assert.Equal(t, 3, attempts)
}

func TestReadsDoNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.RecentDrops(context.Background(), 10)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestUploadScreenshot(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "/plugin/upload-screenshot", r.URL.Path)
		assert.Equal(t, base64.StdEncoding.EncodeToString(png), gjson.GetBytes(body, "image").String())
		assert.Equal(t, "srv-1", gjson.GetBytes(body, "guild_id").String())
		_, _ = w.Write([]byte(`{"url": "https://cdn.example/shot.png"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.UploadScreenshot(context.Background(), png, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/shot.png", result.URL)
	assert.Empty(t, result.Base64)
}

func TestUploadScreenshotRequiresServer(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.UploadScreenshot(context.Background(), []byte{1}, "")
	assert.Error(t, err)
}

func TestValidateTokenReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") == "Bearer good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	status, err := c.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = c.ValidateToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServerListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plugin/servers":
			_, _ = w.Write([]byte(`[{"id": "1", "name": "Clan", "hasBot": true}]`))
		case "/plugin/servers/1/channels":
			_, _ = w.Write([]byte(`[{"id": "c1", "name": "drops", "type": "text"}]`))
		case "/plugin/servers/1/events":
			_, _ = w.Write([]byte(`[{"id": "e1", "name": "Bingo", "status": "active"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()

	servers, err := c.Servers(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.True(t, servers[0].HasBot)

	channels, err := c.ServerChannels(ctx, "1")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "drops", channels[0].Name)

	events, err := c.ServerEvents(ctx, "1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Bingo", events[0].Name)
}
