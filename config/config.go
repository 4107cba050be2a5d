// Package config defines the optional tool configuration of geotools. Command line flags
// override what it sets.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/geosolve/geotools/rexec"
)

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultJPEGQuality  = 95
	DefaultPreviewWidth = 2000
)

// Config is the tool configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Debug bool `json:"debug"`

	// DataRoot is the directory image filenames of a data set are relative to.
	DataRoot string `json:"data_root"`
	// ResultsDir receives the projects written by geosolve.
	ResultsDir string `json:"results_dir"`

	Ortho  OrthoConfig  `json:"ortho"`
	Potree PotreeConfig `json:"potree"`
	Build  BuildConfig  `json:"build"`
}

// OrthoConfig holds the defaults of orthoimage and dtm.
type OrthoConfig struct {
	// GSD of the tile in world units. Zero uses the native resolution of the first camera.
	GSD          float64 `json:"gsd"`
	Elevation    float64 `json:"elevation"`
	JPEGQuality  int     `json:"jpeg_quality"`
	PreviewWidth int     `json:"preview_width"`
}

// PotreeConfig locates the potree tooling.
type PotreeConfig struct {
	ConverterDir string `json:"converter_dir"`
	PotreeDir    string `json:"potree_dir"`
}

// BuildConfig drives run-all.
type BuildConfig struct {
	// SourceDir is the root of the geosolve sources, where the build directory is created.
	SourceDir string `json:"source_dir"`
	BuildDir  string `json:"build_dir"`
	// Geosolve is the solver executable. Defaults to geosolve in the build directory.
	Geosolve string `json:"geosolve"`
	// Processes run after the solver steps.
	Processes []rexec.ProcessConfig `json:"processes"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if err := config.Ortho.Validate(fmt.Sprintf("%s.ortho", path)); err != nil {
		return err
	}
	if err := config.Build.Validate(fmt.Sprintf("%s.build", path)); err != nil {
		return err
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (config *OrthoConfig) Validate(path string) error {
	if config.GSD < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("gsd cannot be negative, got %v", config.GSD))
	}
	if config.JPEGQuality == 0 {
		config.JPEGQuality = DefaultJPEGQuality
	}
	if config.JPEGQuality < 1 || config.JPEGQuality > 100 {
		return utils.NewConfigValidationError(path, errors.Errorf("jpeg_quality must be in [1, 100], got %d", config.JPEGQuality))
	}
	if config.PreviewWidth == 0 {
		config.PreviewWidth = DefaultPreviewWidth
	}
	if config.PreviewWidth < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("preview_width cannot be negative, got %d", config.PreviewWidth))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (config *BuildConfig) Validate(path string) error {
	seen := make(map[string]struct{}, len(config.Processes))
	for idx, proc := range config.Processes {
		procPath := fmt.Sprintf("%s.processes.%d", path, idx)
		if err := proc.Validate(procPath); err != nil {
			return err
		}
		if _, ok := seen[proc.ID]; ok {
			return utils.NewConfigValidationError(procPath, errors.Errorf("duplicate process id %q", proc.ID))
		}
		seen[proc.ID] = struct{}{}
	}
	return nil
}
