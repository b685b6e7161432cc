package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
)

// PreferenceRepository persists the single notification preferences row.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Save writes the preferences, replacing the existing row.
func (r *PreferenceRepository) Save(prefs models.Preferences) error {
	species, err := json.Marshal(prefs.Species)
	if err != nil {
		return fmt.Errorf("failed to encode species list: %w", err)
	}

	query := `
		INSERT INTO preferences (id, email_enabled, sms_enabled, species, updated_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email_enabled = excluded.email_enabled,
			sms_enabled = excluded.sms_enabled,
			species = excluded.species,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, boolInt(prefs.EmailEnabled), boolInt(prefs.SMSEnabled), string(species), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

// Load reads the stored preferences. When nothing has been saved yet the
// defaults are returned.
func (r *PreferenceRepository) Load() (models.Preferences, error) {
	var (
		emailEnabled int
		smsEnabled   int
		species      string
	)

	err := r.db.QueryRow("SELECT email_enabled, sms_enabled, species FROM preferences WHERE id = 1").
		Scan(&emailEnabled, &smsEnabled, &species)
	if err == sql.ErrNoRows {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs := models.Preferences{
		EmailEnabled: emailEnabled != 0,
		SMSEnabled:   smsEnabled != 0,
	}
	if err := json.Unmarshal([]byte(species), &prefs.Species); err != nil {
		return models.Preferences{}, fmt.Errorf("failed to decode species list: %w", err)
	}

	return prefs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
