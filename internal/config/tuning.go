package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// Steering policy names accepted by the "policy" key.
const (
	PolicyFlocking  = "flocking"
	PolicyFlowField = "flowfield"
)

// Calibration modes accepted by the "calibration_mode" key.
const (
	CalibrationAuto   = "auto"
	CalibrationManual = "manual"
)

// TuningConfig represents the root configuration for tuning parameters.
// The schema matches the /api/params endpoint so the same JSON
// can be used for both startup configuration and runtime updates.
type TuningConfig struct {
	// Motion detection
	ThresholdScale           *float64 `json:"threshold_scale,omitempty"`
	BaselineUpdateRate       *float64 `json:"baseline_update_rate,omitempty"`
	BaselineWarmupTicks      *int     `json:"baseline_warmup_ticks,omitempty"`
	BaselineUpdateEvery      *int     `json:"baseline_update_every,omitempty"`
	DetectionIntervalDebug   *int     `json:"detection_interval_debug,omitempty"`
	DetectionIntervalHotspot *int     `json:"detection_interval_hotspot,omitempty"`
	DetectionStepDebug       *int     `json:"detection_step_debug,omitempty"`
	DetectionStepHotspot     *int     `json:"detection_step_hotspot,omitempty"`

	// Hotspot aggregation
	MotionGridSize    *int     `json:"motion_grid_size,omitempty"`
	MinHotspotSize    *int     `json:"min_hotspot_size,omitempty"`
	HotspotThreshold  *float64 `json:"hotspot_threshold,omitempty"`
	MaxActiveHotspots *int     `json:"max_active_hotspots,omitempty"`

	// Hotspot attraction
	HotspotInfluenceRadius    *float64 `json:"hotspot_influence_radius,omitempty"`
	HotspotInnerRadius        *float64 `json:"hotspot_inner_radius,omitempty"`
	HotspotAttractionStrength *float64 `json:"hotspot_attraction_strength,omitempty"`
	HotspotMaxForce           *float64 `json:"hotspot_max_force,omitempty"`
	HotspotBlendCount         *int     `json:"hotspot_blend_count,omitempty"`
	HotspotSwirlStrength      *float64 `json:"hotspot_swirl_strength,omitempty"`
	HotspotDamping            *float64 `json:"hotspot_damping,omitempty"`
	OrbitSwirlBase            *float64 `json:"orbit_swirl_base,omitempty"`
	OrbitSwirlMin             *float64 `json:"orbit_swirl_min,omitempty"`
	OrbitJitter               *float64 `json:"orbit_jitter,omitempty"`
	HotspotUpdateModulo       *int     `json:"hotspot_update_modulo,omitempty"`

	// Gravity well velocity damping
	WellEnabled      *bool    `json:"well_enabled,omitempty"`
	WellRadius       *float64 `json:"well_radius,omitempty"`
	WellStrength     *float64 `json:"well_strength,omitempty"`
	WellMaxDamping   *float64 `json:"well_max_damping,omitempty"`
	WellCoreRadius   *float64 `json:"well_core_radius,omitempty"`
	WellCoreMaxSpeed *float64 `json:"well_core_max_speed,omitempty"`

	// Agents
	NumParticles     *int     `json:"num_particles,omitempty"`
	MaxSpeed         *float64 `json:"max_speed,omitempty"`
	MaxForce         *float64 `json:"max_force,omitempty"`
	SeparationRadius *float64 `json:"separation_radius,omitempty"`
	AlignmentRadius  *float64 `json:"alignment_radius,omitempty"`
	CohesionRadius   *float64 `json:"cohesion_radius,omitempty"`
	Policy           *string  `json:"policy,omitempty"`

	// Flow field
	FlowScale     *float64 `json:"flow_scale,omitempty"`
	FlowTimeStep  *float64 `json:"flow_time_step,omitempty"`
	RespawnMargin *float64 `json:"respawn_margin,omitempty"`

	// Auto-calibration
	CalibrationMode        *string `json:"calibration_mode,omitempty"`
	CalibrationDuration    *string `json:"calibration_duration,omitempty"` // duration string like "8s"
	CalibrationSampleEvery *int    `json:"calibration_sample_every,omitempty"`
	CalibrationMinSamples  *int    `json:"calibration_min_samples,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the Get* defaults. Useful when no defaults file is available.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		ThresholdScale:           ptrFloat64(e.GetThresholdScale()),
		BaselineUpdateRate:       ptrFloat64(e.GetBaselineUpdateRate()),
		BaselineWarmupTicks:      ptrInt(e.GetBaselineWarmupTicks()),
		BaselineUpdateEvery:      ptrInt(e.GetBaselineUpdateEvery()),
		DetectionIntervalDebug:   ptrInt(e.GetDetectionIntervalDebug()),
		DetectionIntervalHotspot: ptrInt(e.GetDetectionIntervalHotspot()),
		DetectionStepDebug:       ptrInt(e.GetDetectionStepDebug()),
		DetectionStepHotspot:     ptrInt(e.GetDetectionStepHotspot()),

		MotionGridSize:    ptrInt(e.GetMotionGridSize()),
		MinHotspotSize:    ptrInt(e.GetMinHotspotSize()),
		HotspotThreshold:  ptrFloat64(e.GetHotspotThreshold()),
		MaxActiveHotspots: ptrInt(e.GetMaxActiveHotspots()),

		HotspotInfluenceRadius:    ptrFloat64(e.GetHotspotInfluenceRadius()),
		HotspotInnerRadius:        ptrFloat64(e.GetHotspotInnerRadius()),
		HotspotAttractionStrength: ptrFloat64(e.GetHotspotAttractionStrength()),
		HotspotMaxForce:           ptrFloat64(e.GetHotspotMaxForce()),
		HotspotBlendCount:         ptrInt(e.GetHotspotBlendCount()),
		HotspotSwirlStrength:      ptrFloat64(e.GetHotspotSwirlStrength()),
		HotspotDamping:            ptrFloat64(e.GetHotspotDamping()),
		OrbitSwirlBase:            ptrFloat64(e.GetOrbitSwirlBase()),
		OrbitSwirlMin:             ptrFloat64(e.GetOrbitSwirlMin()),
		OrbitJitter:               ptrFloat64(e.GetOrbitJitter()),
		HotspotUpdateModulo:       ptrInt(e.GetHotspotUpdateModulo()),

		WellEnabled:      ptrBool(e.GetWellEnabled()),
		WellRadius:       ptrFloat64(e.GetWellRadius()),
		WellStrength:     ptrFloat64(e.GetWellStrength()),
		WellMaxDamping:   ptrFloat64(e.GetWellMaxDamping()),
		WellCoreRadius:   ptrFloat64(e.GetWellCoreRadius()),
		WellCoreMaxSpeed: ptrFloat64(e.GetWellCoreMaxSpeed()),

		NumParticles:     ptrInt(e.GetNumParticles()),
		MaxSpeed:         ptrFloat64(e.GetMaxSpeed()),
		MaxForce:         ptrFloat64(e.GetMaxForce()),
		SeparationRadius: ptrFloat64(e.GetSeparationRadius()),
		AlignmentRadius:  ptrFloat64(e.GetAlignmentRadius()),
		CohesionRadius:   ptrFloat64(e.GetCohesionRadius()),
		Policy:           ptrString(e.GetPolicy()),

		FlowScale:     ptrFloat64(e.GetFlowScale()),
		FlowTimeStep:  ptrFloat64(e.GetFlowTimeStep()),
		RespawnMargin: ptrFloat64(e.GetRespawnMargin()),

		CalibrationMode:        ptrString(e.GetCalibrationMode()),
		CalibrationDuration:    ptrString(e.GetCalibrationDuration().String()),
		CalibrationSampleEvery: ptrInt(e.GetCalibrationSampleEvery()),
		CalibrationMinSamples:  ptrInt(e.GetCalibrationMinSamples()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseTuningConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseTuningConfig decodes and validates a JSON document using the
// TuningConfig schema. It is shared by the file loader and /api/params.
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Merge overlays every non-nil field of other onto a copy of c and returns it.
// Live parameter updates arrive as partial documents and are merged this way.
func (c *TuningConfig) Merge(other *TuningConfig) *TuningConfig {
	out := *c
	if other == nil {
		return &out
	}
	merged, err := mergeJSON(&out, other)
	if err != nil {
		monitoring.Opsf("tuning config merge failed, keeping current values: %v", err)
		return &out
	}
	return merged
}

// mergeJSON decodes each document in turn into one config. Round-tripping
// through JSON means new fields never need listing here twice.
func mergeJSON(docs ...any) (*TuningConfig, error) {
	merged := EmptyTuningConfig()
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding tuning config: %w", err)
		}
		if err := json.Unmarshal(data, merged); err != nil {
			return nil, fmt.Errorf("decoding tuning config: %w", err)
		}
	}
	return merged, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ThresholdScale != nil && (*c.ThresholdScale < 0.2 || *c.ThresholdScale > 5.0) {
		return fmt.Errorf("threshold_scale must be between 0.2 and 5.0, got %f", *c.ThresholdScale)
	}
	if c.BaselineUpdateRate != nil && (*c.BaselineUpdateRate <= 0 || *c.BaselineUpdateRate > 1) {
		return fmt.Errorf("baseline_update_rate must be in (0, 1], got %f", *c.BaselineUpdateRate)
	}
	for name, v := range map[string]*int{
		"baseline_update_every":      c.BaselineUpdateEvery,
		"detection_interval_debug":   c.DetectionIntervalDebug,
		"detection_interval_hotspot": c.DetectionIntervalHotspot,
		"detection_step_debug":       c.DetectionStepDebug,
		"detection_step_hotspot":     c.DetectionStepHotspot,
		"motion_grid_size":           c.MotionGridSize,
		"max_active_hotspots":        c.MaxActiveHotspots,
		"hotspot_blend_count":        c.HotspotBlendCount,
		"hotspot_update_modulo":      c.HotspotUpdateModulo,
		"calibration_sample_every":   c.CalibrationSampleEvery,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, *v)
		}
	}
	for name, v := range map[string]*int{
		"baseline_warmup_ticks":   c.BaselineWarmupTicks,
		"min_hotspot_size":        c.MinHotspotSize,
		"num_particles":           c.NumParticles,
		"calibration_min_samples": c.CalibrationMinSamples,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}
	if c.MinHotspotSize != nil && *c.MinHotspotSize > 65535 {
		return fmt.Errorf("min_hotspot_size must fit a cell counter, got %d", *c.MinHotspotSize)
	}
	for name, v := range map[string]*float64{
		"hotspot_threshold":           c.HotspotThreshold,
		"hotspot_influence_radius":    c.HotspotInfluenceRadius,
		"hotspot_inner_radius":        c.HotspotInnerRadius,
		"hotspot_attraction_strength": c.HotspotAttractionStrength,
		"hotspot_max_force":           c.HotspotMaxForce,
		"hotspot_swirl_strength":      c.HotspotSwirlStrength,
		"orbit_swirl_base":            c.OrbitSwirlBase,
		"orbit_swirl_min":             c.OrbitSwirlMin,
		"orbit_jitter":                c.OrbitJitter,
		"well_radius":                 c.WellRadius,
		"well_strength":               c.WellStrength,
		"well_core_radius":            c.WellCoreRadius,
		"well_core_max_speed":         c.WellCoreMaxSpeed,
		"respawn_margin":              c.RespawnMargin,
		"flow_time_step":              c.FlowTimeStep,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"max_speed":         c.MaxSpeed,
		"max_force":         c.MaxForce,
		"separation_radius": c.SeparationRadius,
		"alignment_radius":  c.AlignmentRadius,
		"cohesion_radius":   c.CohesionRadius,
		"flow_scale":        c.FlowScale,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	if c.HotspotDamping != nil && (*c.HotspotDamping < 0 || *c.HotspotDamping > 1) {
		return fmt.Errorf("hotspot_damping must be between 0 and 1, got %f", *c.HotspotDamping)
	}
	if c.WellMaxDamping != nil && (*c.WellMaxDamping < 0 || *c.WellMaxDamping > 1) {
		return fmt.Errorf("well_max_damping must be between 0 and 1, got %f", *c.WellMaxDamping)
	}
	if c.Policy != nil && *c.Policy != PolicyFlocking && *c.Policy != PolicyFlowField {
		return fmt.Errorf("policy must be %q or %q, got %q", PolicyFlocking, PolicyFlowField, *c.Policy)
	}
	if c.CalibrationMode != nil && *c.CalibrationMode != CalibrationAuto && *c.CalibrationMode != CalibrationManual {
		return fmt.Errorf("calibration_mode must be %q or %q, got %q", CalibrationAuto, CalibrationManual, *c.CalibrationMode)
	}
	if c.CalibrationDuration != nil && *c.CalibrationDuration != "" {
		d, err := time.ParseDuration(*c.CalibrationDuration)
		if err != nil {
			return fmt.Errorf("invalid calibration_duration '%s': %w", *c.CalibrationDuration, err)
		}
		if d <= 0 {
			return fmt.Errorf("calibration_duration must be positive, got %s", d)
		}
	}
	return nil
}

// GetThresholdScale returns the threshold_scale value or the default.
func (c *TuningConfig) GetThresholdScale() float64 {
	if c.ThresholdScale == nil {
		return 2.0
	}
	return *c.ThresholdScale
}

// GetBaselineUpdateRate returns the baseline_update_rate value or the default.
func (c *TuningConfig) GetBaselineUpdateRate() float64 {
	if c.BaselineUpdateRate == nil {
		return 0.05
	}
	return *c.BaselineUpdateRate
}

// GetBaselineWarmupTicks returns the baseline_warmup_ticks value or the default.
func (c *TuningConfig) GetBaselineWarmupTicks() int {
	if c.BaselineWarmupTicks == nil {
		return 60
	}
	return *c.BaselineWarmupTicks
}

// GetBaselineUpdateEvery returns the baseline_update_every value or the default.
func (c *TuningConfig) GetBaselineUpdateEvery() int {
	if c.BaselineUpdateEvery == nil {
		return 10 // ~6 Hz at 60 fps
	}
	return *c.BaselineUpdateEvery
}

// GetDetectionIntervalDebug returns the detection_interval_debug value or the default.
func (c *TuningConfig) GetDetectionIntervalDebug() int {
	if c.DetectionIntervalDebug == nil {
		return 4 // ~15 Hz
	}
	return *c.DetectionIntervalDebug
}

// GetDetectionIntervalHotspot returns the detection_interval_hotspot value or the default.
func (c *TuningConfig) GetDetectionIntervalHotspot() int {
	if c.DetectionIntervalHotspot == nil {
		return 10 // ~6 Hz
	}
	return *c.DetectionIntervalHotspot
}

// GetDetectionStepDebug returns the detection_step_debug value or the default.
func (c *TuningConfig) GetDetectionStepDebug() int {
	if c.DetectionStepDebug == nil {
		return 4
	}
	return *c.DetectionStepDebug
}

// GetDetectionStepHotspot returns the detection_step_hotspot value or the default.
func (c *TuningConfig) GetDetectionStepHotspot() int {
	if c.DetectionStepHotspot == nil {
		return 6
	}
	return *c.DetectionStepHotspot
}

// GetMotionGridSize returns the motion_grid_size value or the default.
func (c *TuningConfig) GetMotionGridSize() int {
	if c.MotionGridSize == nil {
		return 60
	}
	return *c.MotionGridSize
}

// GetMinHotspotSize returns the min_hotspot_size value or the default.
func (c *TuningConfig) GetMinHotspotSize() int {
	if c.MinHotspotSize == nil {
		return 5
	}
	return *c.MinHotspotSize
}

// GetHotspotThreshold returns the hotspot_threshold value or the default.
func (c *TuningConfig) GetHotspotThreshold() float64 {
	if c.HotspotThreshold == nil {
		return 50
	}
	return *c.HotspotThreshold
}

// GetMaxActiveHotspots returns the max_active_hotspots value or the default.
func (c *TuningConfig) GetMaxActiveHotspots() int {
	if c.MaxActiveHotspots == nil {
		return 16
	}
	return *c.MaxActiveHotspots
}

// GetHotspotInfluenceRadius returns the hotspot_influence_radius value or the default.
func (c *TuningConfig) GetHotspotInfluenceRadius() float64 {
	if c.HotspotInfluenceRadius == nil {
		return 280
	}
	return *c.HotspotInfluenceRadius
}

// GetHotspotInnerRadius returns the hotspot_inner_radius value or the default.
func (c *TuningConfig) GetHotspotInnerRadius() float64 {
	if c.HotspotInnerRadius == nil {
		return 28
	}
	return *c.HotspotInnerRadius
}

// GetHotspotAttractionStrength returns the hotspot_attraction_strength value or the default.
func (c *TuningConfig) GetHotspotAttractionStrength() float64 {
	if c.HotspotAttractionStrength == nil {
		return 0.12
	}
	return *c.HotspotAttractionStrength
}

// GetHotspotMaxForce returns the hotspot_max_force value or the default.
func (c *TuningConfig) GetHotspotMaxForce() float64 {
	if c.HotspotMaxForce == nil {
		return 0.4
	}
	return *c.HotspotMaxForce
}

// GetHotspotBlendCount returns the hotspot_blend_count value or the default.
func (c *TuningConfig) GetHotspotBlendCount() int {
	if c.HotspotBlendCount == nil {
		return 3
	}
	return *c.HotspotBlendCount
}

// GetHotspotSwirlStrength returns the hotspot_swirl_strength value or the default.
func (c *TuningConfig) GetHotspotSwirlStrength() float64 {
	if c.HotspotSwirlStrength == nil {
		return 0.1
	}
	return *c.HotspotSwirlStrength
}

// GetHotspotDamping returns the hotspot_damping value or the default.
func (c *TuningConfig) GetHotspotDamping() float64 {
	if c.HotspotDamping == nil {
		return 0.08
	}
	return *c.HotspotDamping
}

// GetOrbitSwirlBase returns the orbit_swirl_base value or the default.
func (c *TuningConfig) GetOrbitSwirlBase() float64 {
	if c.OrbitSwirlBase == nil {
		return 0.22
	}
	return *c.OrbitSwirlBase
}

// GetOrbitSwirlMin returns the orbit_swirl_min value or the default.
func (c *TuningConfig) GetOrbitSwirlMin() float64 {
	if c.OrbitSwirlMin == nil {
		return 0.06
	}
	return *c.OrbitSwirlMin
}

// GetOrbitJitter returns the orbit_jitter value or the default.
func (c *TuningConfig) GetOrbitJitter() float64 {
	if c.OrbitJitter == nil {
		return 0.03
	}
	return *c.OrbitJitter
}

// GetHotspotUpdateModulo returns the hotspot_update_modulo value or the default.
func (c *TuningConfig) GetHotspotUpdateModulo() int {
	if c.HotspotUpdateModulo == nil {
		return 2
	}
	return *c.HotspotUpdateModulo
}

// GetWellEnabled returns the well_enabled value or the default.
func (c *TuningConfig) GetWellEnabled() bool {
	if c.WellEnabled == nil {
		return false // default: force-based attraction only
	}
	return *c.WellEnabled
}

// GetWellRadius returns the well_radius value or the default.
func (c *TuningConfig) GetWellRadius() float64 {
	if c.WellRadius == nil {
		return 120
	}
	return *c.WellRadius
}

// GetWellStrength returns the well_strength value or the default.
func (c *TuningConfig) GetWellStrength() float64 {
	if c.WellStrength == nil {
		return 0.15
	}
	return *c.WellStrength
}

// GetWellMaxDamping returns the well_max_damping value or the default.
func (c *TuningConfig) GetWellMaxDamping() float64 {
	if c.WellMaxDamping == nil {
		return 0.6
	}
	return *c.WellMaxDamping
}

// GetWellCoreRadius returns the well_core_radius value or the default.
func (c *TuningConfig) GetWellCoreRadius() float64 {
	if c.WellCoreRadius == nil {
		return 12
	}
	return *c.WellCoreRadius
}

// GetWellCoreMaxSpeed returns the well_core_max_speed value or the default.
func (c *TuningConfig) GetWellCoreMaxSpeed() float64 {
	if c.WellCoreMaxSpeed == nil {
		return 1.2
	}
	return *c.WellCoreMaxSpeed
}

// GetNumParticles returns the num_particles value or the default.
func (c *TuningConfig) GetNumParticles() int {
	if c.NumParticles == nil {
		return 100
	}
	return *c.NumParticles
}

// GetMaxSpeed returns the max_speed value or the default.
func (c *TuningConfig) GetMaxSpeed() float64 {
	if c.MaxSpeed == nil {
		return 5
	}
	return *c.MaxSpeed
}

// GetMaxForce returns the max_force value or the default.
func (c *TuningConfig) GetMaxForce() float64 {
	if c.MaxForce == nil {
		return 0.05
	}
	return *c.MaxForce
}

// GetSeparationRadius returns the separation_radius value or the default.
func (c *TuningConfig) GetSeparationRadius() float64 {
	if c.SeparationRadius == nil {
		return 25
	}
	return *c.SeparationRadius
}

// GetAlignmentRadius returns the alignment_radius value or the default.
func (c *TuningConfig) GetAlignmentRadius() float64 {
	if c.AlignmentRadius == nil {
		return 50
	}
	return *c.AlignmentRadius
}

// GetCohesionRadius returns the cohesion_radius value or the default.
func (c *TuningConfig) GetCohesionRadius() float64 {
	if c.CohesionRadius == nil {
		return 50
	}
	return *c.CohesionRadius
}

// GetPolicy returns the policy value or the default.
func (c *TuningConfig) GetPolicy() string {
	if c.Policy == nil || *c.Policy == "" {
		return PolicyFlocking
	}
	return *c.Policy
}

// GetFlowScale returns the flow_scale value or the default.
func (c *TuningConfig) GetFlowScale() float64 {
	if c.FlowScale == nil {
		return 0.003
	}
	return *c.FlowScale
}

// GetFlowTimeStep returns the flow_time_step value or the default.
func (c *TuningConfig) GetFlowTimeStep() float64 {
	if c.FlowTimeStep == nil {
		return 0.004
	}
	return *c.FlowTimeStep
}

// GetRespawnMargin returns the respawn_margin value or the default.
func (c *TuningConfig) GetRespawnMargin() float64 {
	if c.RespawnMargin == nil {
		return 10
	}
	return *c.RespawnMargin
}

// GetCalibrationMode returns the calibration_mode value or the default.
func (c *TuningConfig) GetCalibrationMode() string {
	if c.CalibrationMode == nil || *c.CalibrationMode == "" {
		return CalibrationAuto
	}
	return *c.CalibrationMode
}

// GetCalibrationDuration parses and returns the CalibrationDuration as a time.Duration.
func (c *TuningConfig) GetCalibrationDuration() time.Duration {
	if c.CalibrationDuration == nil || *c.CalibrationDuration == "" {
		return 8 * time.Second // default
	}
	d, err := time.ParseDuration(*c.CalibrationDuration)
	if err != nil {
		return 8 * time.Second // default on parse error
	}
	return d
}

// GetCalibrationSampleEvery returns the calibration_sample_every value or the default.
func (c *TuningConfig) GetCalibrationSampleEvery() int {
	if c.CalibrationSampleEvery == nil {
		return 15
	}
	return *c.CalibrationSampleEvery
}

// GetCalibrationMinSamples returns the calibration_min_samples value or the default.
func (c *TuningConfig) GetCalibrationMinSamples() int {
	if c.CalibrationMinSamples == nil {
		return 10
	}
	return *c.CalibrationMinSamples
}
