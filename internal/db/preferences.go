package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/motion.swarm/internal/config"
)

// ErrPresetNotFound is returned when no preset has the requested name.
var ErrPresetNotFound = errors.New("tuning preset not found")

// SavePreset stores cfg under name, replacing any previous preset.
func (db *DB) SavePreset(name string, cfg *config.TuningConfig) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if cfg == nil {
		return fmt.Errorf("preset %q has no config", name)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", name, err)
	}
	_, err = db.Exec(`
		INSERT INTO tuning_preferences (name, config_json, updated_at_ns)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at_ns = excluded.updated_at_ns`,
		name, string(body), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save preset %q: %w", name, err)
	}
	return nil
}

// LoadPreset returns the preset stored under name.
func (db *DB) LoadPreset(name string) (*config.TuningConfig, error) {
	var body string
	err := db.QueryRow(`SELECT config_json FROM tuning_preferences WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preset %q: %w", name, err)
	}
	cfg, err := config.ParseTuningConfig([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("stored preset %q: %w", name, err)
	}
	return cfg, nil
}

// ListPresets returns stored preset names in alphabetical order.
func (db *DB) ListPresets() ([]string, error) {
	rows, err := db.Query(`SELECT name FROM tuning_preferences ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeletePreset removes a preset. Deleting a missing preset is an error.
func (db *DB) DeletePreset(name string) error {
	res, err := db.Exec(`DELETE FROM tuning_preferences WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return nil
}
