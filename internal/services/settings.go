package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/shared"
)

const profileKey = "userProfile"

// SettingsService manages notification preferences and the local profile.
//
// Preferences are the source of truth locally; saves are forwarded to the
// settings endpoint on a best-effort basis so the notification lambdas
// see them, but a forwarding failure never loses the local save.
type SettingsService struct {
	client *Client
	cfg    shared.APIConfig
	prefs  *repositories.PreferenceRepository
	kv     *repositories.KVRepository
	logger *log.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(cfg shared.APIConfig, client *Client, prefs *repositories.PreferenceRepository, kv *repositories.KVRepository, logger *log.Logger) *SettingsService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SettingsService{client: client, cfg: cfg, prefs: prefs, kv: kv, logger: logger}
}

// SavePreferences stores the preferences locally and forwards them to the
// settings endpoint when one is configured.
func (s *SettingsService) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	if err := s.prefs.Save(prefs); err != nil {
		return err
	}

	if s.cfg.SettingsURL == "" {
		return nil
	}
	if _, err := s.client.doJSON(ctx, http.MethodPost, s.cfg.SettingsURL, prefs); err != nil {
		s.logger.Warn("failed to forward preferences to API", "error", err)
	}

	return nil
}

// LoadPreferences reads the stored preferences.
func (s *SettingsService) LoadPreferences() (models.Preferences, error) {
	return s.prefs.Load()
}

// SaveProfile stores the profile locally.
func (s *SettingsService) SaveProfile(profile models.Profile) error {
	if profile.Email == "" {
		return fmt.Errorf("%w: profile email is required", shared.ErrInvalidInput)
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.kv.Set(profileKey, string(data))
}

// LoadProfile reads the stored profile, or nil when none has been saved.
// A corrupt stored value also reads as nil.
func (s *SettingsService) LoadProfile() *models.Profile {
	value, ok, _ := s.kv.Get(profileKey)
	if !ok {
		return nil
	}
	var profile models.Profile
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return nil
	}
	return &profile
}

// ChangePassword validates the requested change. The identity provider
// call is not wired up yet; validation failures surface immediately and
// valid requests report the missing backing.
func (s *SettingsService) ChangePassword(current, updated string) error {
	if current == "" || updated == "" {
		return fmt.Errorf("%w: current and new password are required", shared.ErrMissingArgument)
	}
	if len(updated) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters", shared.ErrInvalidInput)
	}
	if current == updated {
		return fmt.Errorf("%w: new password must differ from the current one", shared.ErrInvalidInput)
	}
	return fmt.Errorf("password change: %w", shared.ErrNotImplemented)
}
