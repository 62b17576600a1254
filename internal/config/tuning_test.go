package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.ThresholdScale == nil || *cfg.ThresholdScale != 2.0 {
		t.Errorf("Expected ThresholdScale 2.0, got %v", cfg.ThresholdScale)
	}
	if cfg.BaselineUpdateRate == nil || *cfg.BaselineUpdateRate != 0.05 {
		t.Errorf("Expected BaselineUpdateRate 0.05, got %v", cfg.BaselineUpdateRate)
	}
	if cfg.CalibrationDuration == nil || *cfg.CalibrationDuration != "8s" {
		t.Errorf("Expected CalibrationDuration '8s', got %v", cfg.CalibrationDuration)
	}
	if cfg.Policy == nil || *cfg.Policy != PolicyFlocking {
		t.Errorf("Expected Policy %q, got %v", PolicyFlocking, cfg.Policy)
	}

	// Test getter methods
	if cfg.GetMaxActiveHotspots() != 16 {
		t.Errorf("GetMaxActiveHotspots() = %d, want 16", cfg.GetMaxActiveHotspots())
	}
	if cfg.GetMinHotspotSize() != 5 {
		t.Errorf("GetMinHotspotSize() = %d, want 5", cfg.GetMinHotspotSize())
	}
	if cfg.GetCalibrationDuration() != 8*time.Second {
		t.Errorf("GetCalibrationDuration() = %v, want 8s", cfg.GetCalibrationDuration())
	}
	require.NoError(t, cfg.Validate())
}

func TestDefaultsFileMatchesGetters(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultTuningConfig(), fromFile); diff != "" {
		t.Errorf("config/tuning.defaults.json drifted from Get* defaults (-code +file):\n%s", diff)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "threshold_scale": 1.5,
  "max_active_hotspots": 4,
  "policy": "flowfield",
  "calibration_duration": "4s"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, 1.5, cfg.GetThresholdScale())
	assert.Equal(t, 4, cfg.GetMaxActiveHotspots())
	assert.Equal(t, PolicyFlowField, cfg.GetPolicy())
	assert.Equal(t, 4*time.Second, cfg.GetCalibrationDuration())

	// Omitted fields fall back to defaults
	assert.Nil(t, cfg.HotspotThreshold)
	assert.Equal(t, 50.0, cfg.GetHotspotThreshold())
	assert.Equal(t, 280.0, cfg.GetHotspotInfluenceRadius())
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("wrong extension", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "config.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		p := filepath.Join(tmpDir, "bad.json")
		require.NoError(t, os.WriteFile(p, []byte("{not json"), 0644))
		_, err := LoadTuningConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("too large", func(t *testing.T) {
		p := filepath.Join(tmpDir, "huge.json")
		big := `{"policy":"flocking","pad":"` + strings.Repeat("x", 1024*1024) + `"}`
		require.NoError(t, os.WriteFile(p, []byte(big), 0644))
		_, err := LoadTuningConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("validation failure", func(t *testing.T) {
		p := filepath.Join(tmpDir, "invalid.json")
		require.NoError(t, os.WriteFile(p, []byte(`{"threshold_scale": 9}`), 0644))
		_, err := LoadTuningConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "threshold_scale")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"empty is valid", `{}`, ""},
		{"scale low", `{"threshold_scale": 0.1}`, "threshold_scale"},
		{"rate zero", `{"baseline_update_rate": 0}`, "baseline_update_rate"},
		{"grid zero", `{"motion_grid_size": 0}`, "motion_grid_size"},
		{"modulo zero", `{"hotspot_update_modulo": 0}`, "hotspot_update_modulo"},
		{"negative min size", `{"min_hotspot_size": -1}`, "min_hotspot_size"},
		{"negative radius", `{"hotspot_inner_radius": -3}`, "hotspot_inner_radius"},
		{"zero max speed", `{"max_speed": 0}`, "max_speed"},
		{"damping above one", `{"hotspot_damping": 1.5}`, "hotspot_damping"},
		{"unknown policy", `{"policy": "swarmish"}`, "policy"},
		{"unknown mode", `{"calibration_mode": "sometimes"}`, "calibration_mode"},
		{"bad duration", `{"calibration_duration": "soon"}`, "calibration_duration"},
		{"negative duration", `{"calibration_duration": "-2s"}`, "calibration_duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTuningConfig([]byte(tt.json))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultTuningConfig()
	patch, err := ParseTuningConfig([]byte(`{"threshold_scale": 3.0, "well_enabled": true}`))
	require.NoError(t, err)

	merged := base.Merge(patch)
	assert.Equal(t, 3.0, merged.GetThresholdScale())
	assert.True(t, merged.GetWellEnabled())
	assert.Equal(t, base.GetHotspotThreshold(), merged.GetHotspotThreshold())

	// The receiver is not modified
	assert.Equal(t, 2.0, base.GetThresholdScale())

	same := base.Merge(nil)
	if diff := cmp.Diff(base, same); diff != "" {
		t.Errorf("Merge(nil) changed config:\n%s", diff)
	}
}

func TestMergeJSON(t *testing.T) {
	t.Parallel()
	merged, err := mergeJSON(DefaultTuningConfig(), map[string]any{"threshold_scale": 3.5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, merged.GetThresholdScale())
	assert.Equal(t, DefaultTuningConfig().GetMaxSpeed(), merged.GetMaxSpeed())

	tests := []struct {
		name string
		doc  any
		want string
	}{
		{"unencodable", math.NaN(), "encoding tuning config"},
		{"wrong shape", "threshold_scale", "decoding tuning config"},
		{"wrong field type", map[string]any{"threshold_scale": "high"}, "decoding tuning config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mergeJSON(DefaultTuningConfig(), tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetCalibrationDuration_ParseErrorFallsBack(t *testing.T) {
	bad := "later"
	cfg := &TuningConfig{CalibrationDuration: &bad}
	assert.Equal(t, 8*time.Second, cfg.GetCalibrationDuration())
}
