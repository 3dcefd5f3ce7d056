package appconfig

import (
	"time"

	"osrsloottracker.dev/plugin-core/internal/app/appcontext"
)

type ConfigSpec struct {
	// APIEndpoint is the base URL of the loot tracker backend. Overridable
	// for development against a local backend.
	APIEndpoint string `split_words:"true" default:"https://osrsloottracker.com/api"`

	// DevMode to indicate development mode. When true, the program logs at
	// trace level and keeps pretty-printed console output.
	DevMode bool `split_words:"true"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print
	// logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// SubmitWorkers is the number of goroutines draining the inbound signal
	// bus. Each worker processes one signal at a time; candidates across
	// workers are in flight concurrently.
	SubmitWorkers int `split_words:"true" default:"4"`

	// HTTPTimeout is the per-request timeout for calls to the backend.
	HTTPTimeout time.Duration `split_words:"true" default:"10s"`

	// SettingsKey is the config-store key holding the plugin settings
	// document.
	SettingsKey string `split_words:"true" default:"osrsloottracker"`

	// RecentDropsCap bounds the UI-facing recent-drops projection.
	RecentDropsCap int `split_words:"true" default:"50"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
