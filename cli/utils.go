package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/geosolve/geotools/config"
	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/project"
)

// commandEnv is what every action starts from: the tool config and a logger writing to the
// error stream of the app.
type commandEnv struct {
	cfg    *config.Config
	logger logging.Logger
}

func newCommandEnv(c *cli.Context) (*commandEnv, error) {
	cfg, err := config.ReadOrDefault(c.String(generalFlagConfig))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	logger := logging.NewBlankLogger("geotools").Sublogger(c.Command.Name)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	config.InitLoggingSettings(logger, c.Bool(generalFlagDebug), cfg)
	logging.ReplaceGlobal(logger)
	return &commandEnv{cfg: cfg, logger: logger}, nil
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// requireArgs checks the positional arguments of c against their names. Names in brackets are
// optional and must come last.
func requireArgs(c *cli.Context, names ...string) error {
	required := 0
	for _, n := range names {
		if !strings.HasPrefix(n, "[") {
			required++
		}
	}
	if c.NArg() < required || c.NArg() > len(names) {
		return errors.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, strings.Join(names, " "))
	}
	return nil
}

// argOr returns positional argument i, or def when it is missing.
func argOr(c *cli.Context, i int, def string) string {
	if c.NArg() > i {
		return c.Args().Get(i)
	}
	return def
}

// float64Or returns the flag when the user set it, def otherwise.
func float64Or(c *cli.Context, name string, def float64) float64 {
	if c.IsSet(name) {
		return c.Float64(name)
	}
	return def
}

func intOr(c *cli.Context, name string, def int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return def
}

func stringOr(c *cli.Context, name, def string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return def
}

// projectPath accepts either a project directory or the project file itself.
func projectPath(path string) string {
	if filepath.Ext(path) == ".json" {
		return path
	}
	return filepath.Join(path, project.DefaultFilename)
}

type loadedSolution struct {
	proj     *project.Project
	model    project.Model
	solution project.Solution
}

// loadSolution loads a project and picks one solution of one of its models.
func loadSolution(path string, modelIdx, solutionIdx int) (*loadedSolution, error) {
	proj, err := project.Load(projectPath(path))
	if err != nil {
		return nil, err
	}
	m, err := proj.Model(modelIdx)
	if err != nil {
		return nil, err
	}
	sol, err := project.SolutionAt(m, solutionIdx)
	if err != nil {
		return nil, err
	}
	return &loadedSolution{proj: proj, model: m, solution: sol}, nil
}
