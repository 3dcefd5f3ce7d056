// Package auth tracks the plugin's session with the backend. The session is
// restored from the host config store on activation and validated against
// the backend; authentication state gates every submission before any other
// work happens.
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/dchest/uniuri"
	"github.com/rs/zerolog/log"

	"osrsloottracker.dev/plugin-core/internal/settings"
)

const loginSessionIDLen = 32

// tokenValidator is the slice of the transport client the manager needs.
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

type Manager struct {
	settings  *settings.Service
	validator tokenValidator

	mu            sync.RWMutex
	authenticated bool
	token         string
	discordID     string
	username      string
}

func NewManager(settingsSvc *settings.Service, validator tokenValidator) *Manager {
	return &Manager{
		settings:  settingsSvc,
		validator: validator,
	}
}

// CheckStoredAuth restores a persisted session, validating the stored token
// against the backend. An explicit rejection clears the stored credentials;
// network trouble trusts them temporarily so a flaky connection at startup
// does not log the user out.
func (m *Manager) CheckStoredAuth(ctx context.Context) {
	snapshot := m.settings.Snapshot()
	if snapshot.AuthToken == "" {
		log.Info().Msg("no stored authentication found")
		return
	}

	status, err := m.validator.ValidateToken(ctx, snapshot.AuthToken)
	switch {
	case err != nil:
		log.Info().Err(err).Str("user", snapshot.DiscordUsername).
			Msg("network error during token validation, trusting stored token")
		m.restore(snapshot)
	case status == http.StatusOK:
		log.Info().Str("user", snapshot.DiscordUsername).Msg("restored authentication")
		m.restore(snapshot)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		log.Info().Int("status", status).Msg("stored token rejected, clearing authentication")
		m.clear()
	default:
		log.Warn().Int("status", status).Msg("unexpected validation response, trusting stored token")
		m.restore(snapshot)
	}
}

// CompleteLogin installs a freshly issued session and persists it.
func (m *Manager) CompleteLogin(token, discordID, username string) error {
	m.mu.Lock()
	m.authenticated = true
	m.token = token
	m.discordID = discordID
	m.username = username
	m.mu.Unlock()

	for key, value := range map[string]string{
		"authToken":       token,
		"discordId":       discordID,
		"discordUsername": username,
	} {
		if err := m.settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// NewLoginSessionID issues the opaque state parameter for a browser login
// attempt.
func (m *Manager) NewLoginSessionID() string {
	return uniuri.NewLen(loginSessionIDLen)
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}

func (m *Manager) Logout() {
	m.clear()
	log.Info().Msg("user logged out")
}

func (m *Manager) restore(snapshot settings.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = true
	m.token = snapshot.AuthToken
	m.discordID = snapshot.DiscordID
	m.username = snapshot.DiscordUsername
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.authenticated = false
	m.token = ""
	m.discordID = ""
	m.username = ""
	m.mu.Unlock()

	if err := m.settings.ClearCredentials(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored credentials")
	}
}
