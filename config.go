package genomesig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config.go loads analysis profiles from YAML, so scan geometry and
// PCA settings can be versioned alongside the genomes they were tuned
// for instead of hard-coded at call sites.

// ErrInvalidProfile is wrapped by all profile validation failures.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is a declarative analysis configuration.
//
// Example:
//
//	version: 1
//	name: bacterial-default
//	scan:
//	  window_size: 500
//	  step_size: 100
//	  k: 4
//	pca:
//	  num_components: 3
type Profile struct {
	Version int    `yaml:"version"`
	Name    string `yaml:"name"`

	Scan  ScanProfile  `yaml:"scan"`
	PCA   PCAProfile   `yaml:"pca"`
	Accel AccelProfile `yaml:"accel"`
}

// ScanProfile configures the anomaly scanner. Zero fields fall back to
// DefaultScannerConfig when the profile is materialized.
type ScanProfile struct {
	WindowSize int `yaml:"window_size"`
	StepSize   int `yaml:"step_size"`
	K          int `yaml:"k"`

	// DisableCompression turns off the compressibility channel,
	// leaving a KL-only scan.
	DisableCompression bool `yaml:"disable_compression"`
}

// PCAProfile configures the PCA engine.
type PCAProfile struct {
	NumComponents int     `yaml:"num_components"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// AccelProfile configures the acceleration dispatcher.
type AccelProfile struct {
	Disabled       bool `yaml:"disabled"`
	CountThreshold int  `yaml:"count_threshold"`
	ScanThreshold  int  `yaml:"scan_threshold"`
	PCAThreshold   int  `yaml:"pca_threshold"`
}

// ParseProfile parses and validates a YAML profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseProfileFile reads and parses a profile from disk.
func ParseProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// Validate checks the profile for internally inconsistent settings.
// Zero values are allowed everywhere: they mean "use the default".
func (p *Profile) Validate() error {
	if p.Version != 0 && p.Version != 1 {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidProfile, p.Version)
	}
	if p.Scan.WindowSize < 0 || p.Scan.StepSize < 0 {
		return fmt.Errorf("%w: scan geometry must be non-negative", ErrInvalidProfile)
	}
	if p.Scan.K < 0 || p.Scan.K > MaxDenseK {
		return fmt.Errorf("%w: scan k %d outside [0, %d]", ErrInvalidProfile, p.Scan.K, MaxDenseK)
	}
	if p.Scan.WindowSize > 0 && p.Scan.K > p.Scan.WindowSize {
		return fmt.Errorf("%w: scan k %d exceeds window size %d", ErrInvalidProfile, p.Scan.K, p.Scan.WindowSize)
	}
	if p.PCA.NumComponents < 0 || p.PCA.MaxIterations < 0 || p.PCA.Tolerance < 0 {
		return fmt.Errorf("%w: pca settings must be non-negative", ErrInvalidProfile)
	}
	if p.Accel.CountThreshold < 0 || p.Accel.ScanThreshold < 0 || p.Accel.PCAThreshold < 0 {
		return fmt.Errorf("%w: accel thresholds must be non-negative", ErrInvalidProfile)
	}
	return nil
}

// ScannerConfig materializes the scan section, wiring in the given
// accelerator (which may be nil).
func (p *Profile) ScannerConfig(accel *Accelerator) ScannerConfig {
	cfg := DefaultScannerConfig()
	if p.Scan.WindowSize > 0 {
		cfg.WindowSize = p.Scan.WindowSize
	}
	if p.Scan.StepSize > 0 {
		cfg.StepSize = p.Scan.StepSize
	}
	if p.Scan.K > 0 {
		cfg.K = p.Scan.K
	}
	if p.Scan.DisableCompression {
		cfg.Compressor = nil
	}
	cfg.Accelerator = accel
	return cfg
}

// PCAOptions materializes the pca section.
func (p *Profile) PCAOptions(accel *Accelerator) PCAOptions {
	opts := DefaultPCAOptions()
	if p.PCA.NumComponents > 0 {
		opts.NumComponents = p.PCA.NumComponents
	}
	if p.PCA.MaxIterations > 0 {
		opts.MaxIterations = p.PCA.MaxIterations
	}
	if p.PCA.Tolerance > 0 {
		opts.Tolerance = p.PCA.Tolerance
	}
	opts.Accelerator = accel
	return opts
}

// AccelConfig materializes the accel section.
func (p *Profile) AccelConfig() AccelConfig {
	cfg := DefaultAccelConfig()
	cfg.Enabled = !p.Accel.Disabled
	if p.Accel.CountThreshold > 0 {
		cfg.CountThreshold = p.Accel.CountThreshold
	}
	if p.Accel.ScanThreshold > 0 {
		cfg.ScanThreshold = p.Accel.ScanThreshold
	}
	if p.Accel.PCAThreshold > 0 {
		cfg.PCAThreshold = p.Accel.PCAThreshold
	}
	return cfg
}
