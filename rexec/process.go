// Package rexec runs the external tools geotools orchestrates: compilers, the geosolve solver
// and PotreeConverter.
package rexec

import (
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ProcessConfig describes how to run an external program once.
type ProcessConfig struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Args []string `json:"args"`
	CWD  string   `json:"cwd"`
	// Log forwards the output of the process to the logger line by line instead of
	// discarding it.
	Log bool `json:"log"`
	// AllowFailure logs a non-zero exit instead of failing the run.
	AllowFailure bool `json:"allow_failure"`
}

// Validate ensures all parts of the config are valid.
func (config *ProcessConfig) Validate(path string) error {
	if config.ID == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "id")
	}
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if strings.ContainsAny(config.ID, " \t\n") {
		return utils.NewConfigValidationError(path, errors.Errorf("id %q cannot contain whitespace", config.ID))
	}
	return nil
}

// CommandLine is the process as it would be typed in a shell, for logs.
func (config ProcessConfig) CommandLine() string {
	return strings.Join(append([]string{config.Name}, config.Args...), " ")
}
