package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/geosolve/geotools/utils"
)

// DotDir is the directory of the default config file.
var DotDir string

func init() {
	//nolint:errcheck
	home, _ := os.UserHomeDir()
	DotDir = filepath.Join(home, ".geotools")
}

// DefaultPath is where the config is read from when no path is given.
func DefaultPath() string {
	return filepath.Join(DotDir, "config.json")
}

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// ReadOrDefault reads filePath, or the default config file when filePath is empty. A missing
// default file gives the default config.
func ReadOrDefault(filePath string) (*Config, error) {
	if filePath != "" {
		return Read(filePath)
	}
	if !utils.FileExists(DefaultPath()) {
		return FromReader("", bytes.NewReader([]byte("{}")))
	}
	return Read(DefaultPath())
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from. The config is JSON5, so comments
// and unquoted keys are accepted; unknown keys are still rejected.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Config")
	}
	var doc interface{}
	if err := json5.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json5")
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json5")
	}

	cfg := Config{ConfigFilePath: originalPath}
	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config")
	}
	return &cfg, nil
}
