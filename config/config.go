package config

import (
	"encoding/json"
	"os"
)

// Config holds runtime configuration for the cutout pipeline and rendering.
// Fields may be loaded from a JSON file; Validate clamps out-of-range values
// back to safe defaults so a bad file never produces a broken pipeline.
type Config struct {
	Debug bool `json:"debug"`

	// Mask refinement parameters (applied in pipeline order).
	ErodeRadius   float64 `json:"erode_radius"`   // px, morphological minimum
	DilateRadius  float64 `json:"dilate_radius"`  // px, morphological maximum
	Gamma         float64 `json:"gamma"`          // <1.0 darkens mid-tones
	FeatherSigma  float64 `json:"feather_sigma"`  // gaussian blur sigma
	ContrastBoost float64 `json:"contrast_boost"` // factor around mid-gray

	// Cutout edge enhancement.
	SharpenSigma  float64 `json:"sharpen_sigma"`
	SharpenAmount float64 `json:"sharpen_amount"`

	// Interactive editing.
	UndoDepth int `json:"undo_depth"`

	// Subject auto-fit placement.
	FitHeightFraction   float64 `json:"fit_height_fraction"`
	FitMaxWidthFraction float64 `json:"fit_max_width_fraction"`
	FitMinScale         float64 `json:"fit_min_scale"`
	FitMaxScale         float64 `json:"fit_max_scale"`

	// Rendering.
	CanvasBaseColor     string `json:"canvas_base_color"` // hex, e.g. "#EDEDED"
	BackgroundCacheSize int    `json:"background_cache_size"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:               false,
		ErodeRadius:         3.0,
		DilateRadius:        1.5,
		Gamma:               0.75,
		FeatherSigma:        2.5,
		ContrastBoost:       1.3,
		SharpenSigma:        0.6,
		SharpenAmount:       0.4,
		UndoDepth:           15,
		FitHeightFraction:   0.5,
		FitMaxWidthFraction: 0.85,
		FitMinScale:         0.3,
		FitMaxScale:         1.0,
		CanvasBaseColor:     "#EDEDED",
		BackgroundCacheSize: 8,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.ErodeRadius < 0 {
		c.ErodeRadius = 3.0
	}
	if c.DilateRadius < 0 {
		c.DilateRadius = 1.5
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		c.Gamma = 0.75
	}
	if c.FeatherSigma < 0 {
		c.FeatherSigma = 2.5
	}
	if c.ContrastBoost < 1 {
		c.ContrastBoost = 1.3
	}
	if c.SharpenSigma <= 0 {
		c.SharpenSigma = 0.6
	}
	if c.SharpenAmount < 0 {
		c.SharpenAmount = 0.4
	}
	if c.UndoDepth <= 0 {
		c.UndoDepth = 15
	}
	if c.FitHeightFraction <= 0 || c.FitHeightFraction > 1 {
		c.FitHeightFraction = 0.5
	}
	if c.FitMaxWidthFraction <= 0 || c.FitMaxWidthFraction > 1 {
		c.FitMaxWidthFraction = 0.85
	}
	if c.FitMinScale <= 0 {
		c.FitMinScale = 0.3
	}
	if c.FitMaxScale < c.FitMinScale {
		c.FitMaxScale = c.FitMinScale
	}
	if c.CanvasBaseColor == "" {
		c.CanvasBaseColor = "#EDEDED"
	}
	if c.BackgroundCacheSize <= 0 {
		c.BackgroundCacheSize = 8
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
