// Package transport is the outbound boundary to the loot tracker backend.
// The core treats submissions as fire-and-forget with logged failure;
// resilience policy (retries on reads) lives here, never in the pipeline.
package transport

import (
	"context"
	"fmt"

	"osrsloottracker.dev/plugin-core/internal/model"
)

// Destination is the wire form of one qualifying destination. The backend
// keeps the original guild_id naming on the wire.
type Destination struct {
	GuildID    string   `json:"guild_id"`
	ChannelIDs []string `json:"channel_ids,omitempty"`
	EventID    string   `json:"event_id,omitempty"`
}

// DropBatchPayload submits all items of one drop as a single batch so the
// backend posts one message per channel instead of one per item.
type DropBatchPayload struct {
	Username       string           `json:"username"`
	MonsterName    string           `json:"monster_name"`
	DropType       string           `json:"drop_type"`
	Items          []model.DropItem `json:"items"`
	TotalValue     int              `json:"total_value"`
	Destinations   []Destination    `json:"destinations"`
	ScreenshotURL  string           `json:"screenshot_url,omitempty"`
	ScreenshotData string           `json:"screenshot_data,omitempty"`
}

type CollectionLogPayload struct {
	Username       string        `json:"username"`
	ItemName       string        `json:"item_name"`
	Destinations   []Destination `json:"destinations"`
	ScreenshotURL  string        `json:"screenshot_url,omitempty"`
	ScreenshotData string        `json:"screenshot_data,omitempty"`
}

type PetPayload struct {
	Username       string        `json:"username"`
	PetName        string        `json:"pet_name,omitempty"`
	Message        string        `json:"message"`
	Destinations   []Destination `json:"destinations"`
	ScreenshotURL  string        `json:"screenshot_url,omitempty"`
	ScreenshotData string        `json:"screenshot_data,omitempty"`
}

// ScreenshotResult is the backend's upload-validation response. A persisted
// URL means the destination tier stores screenshots server-side; otherwise
// the base64 payload travels inline with the drop submission.
type ScreenshotResult struct {
	URL    string `json:"url"`
	Base64 string `json:"base64"`
}

type RecentDrop struct {
	ID          string `json:"id"`
	ItemName    string `json:"itemName"`
	Quantity    int    `json:"quantity"`
	Value       int64  `json:"value"`
	MonsterName string `json:"monsterName"`
	CreatedAt   string `json:"createdAt"`
}

type PeriodData struct {
	Drops int   `json:"drops"`
	Value int64 `json:"value"`
}

type UserStats struct {
	TotalDrops int         `json:"total_drops"`
	TotalValue int64       `json:"total_value"`
	RSNs       []string    `json:"rsns"`
	Today      *PeriodData `json:"today,omitempty"`
	Week       *PeriodData `json:"week,omitempty"`
	Month      *PeriodData `json:"month,omitempty"`
}

type ServerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	HasBot bool   `json:"hasBot"`
}

type ChannelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type EventInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// TokenSource supplies the opaque bearer credential for outbound calls.
type TokenSource interface {
	AuthToken() string
}

// Client is the capability surface the core consumes. Submissions are
// attempted exactly once; reads may be retried internally.
type Client interface {
	SubmitDropBatch(ctx context.Context, payload *DropBatchPayload) error
	SubmitCollectionLog(ctx context.Context, payload *CollectionLogPayload) error
	SubmitPet(ctx context.Context, payload *PetPayload) error
	UploadScreenshot(ctx context.Context, png []byte, serverID string) (*ScreenshotResult, error)

	RecentDrops(ctx context.Context, limit int) ([]RecentDrop, error)
	UserStats(ctx context.Context, rsn string) (*UserStats, error)
	Servers(ctx context.Context) ([]ServerInfo, error)
	ServerChannels(ctx context.Context, serverID string) ([]ChannelInfo, error)
	ServerEvents(ctx context.Context, serverID string) ([]EventInfo, error)

	// ValidateToken reports the backend's HTTP status for the given
	// credential, or an error for network-level failures.
	ValidateToken(ctx context.Context, token string) (int, error)
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}
