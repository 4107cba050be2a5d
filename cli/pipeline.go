package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/geosolve/geotools/config"
	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/ortho"
	"github.com/geosolve/geotools/potree"
	"github.com/geosolve/geotools/rexec"
)

// PotreeAction is the corresponding action for 'potree'.
func PotreeAction(c *cli.Context) error {
	if err := requireArgs(c, "[dtm_dir]"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	opts := potree.Options{
		DTMDir:       argOr(c, 0, "."),
		ConverterDir: stringOr(c, potreeFlagConverterDir, env.cfg.Potree.ConverterDir),
		PotreeDir:    stringOr(c, potreeFlagPotreeDir, env.cfg.Potree.PotreeDir),
	}
	if err := potree.Publish(c.Context, env.logger, opts); err != nil {
		return err
	}
	printf(c.App.Writer, "run %s to view the DTM", filepath.Join(opts.DTMDir, potree.ViewScriptName))
	return nil
}

// Stages of run-all.
const (
	stageBuild      = "build"
	stageSolve      = "solve"
	stageOrthoimage = "orthoimage"
	stageAll        = "all"
)

// Defaults of run-all, relative to the working directory.
const (
	defaultBuildDir   = "build"
	defaultDataRoot   = "../data"
	defaultResultsDir = "../results/geosolve/model0"
	geosolveName      = "geosolve"
)

// SolverSteps are the geosolve commands run on a data set, in order.
var SolverSteps = []string{"base", "features", "solve"}

type pipeline struct {
	build      config.BuildConfig
	dataRoot   string
	resultsDir string
}

func newPipeline(cfg *config.Config) pipeline {
	p := pipeline{build: cfg.Build, dataRoot: cfg.DataRoot, resultsDir: cfg.ResultsDir}
	if p.build.SourceDir == "" {
		p.build.SourceDir = "."
	}
	if p.build.BuildDir == "" {
		p.build.BuildDir = filepath.Join(p.build.SourceDir, defaultBuildDir)
	}
	if p.build.Geosolve == "" {
		p.build.Geosolve = filepath.Join(p.build.BuildDir, geosolveName)
	}
	if p.dataRoot == "" {
		p.dataRoot = defaultDataRoot
	}
	if p.resultsDir == "" {
		p.resultsDir = defaultResultsDir
	}
	return p
}

// processes returns the external commands of a stage. The orthoimage stage runs in process.
func (p pipeline) processes(stage string) ([]rexec.ProcessConfig, error) {
	switch stage {
	case stageBuild:
		source, err := filepath.Abs(p.build.SourceDir)
		if err != nil {
			return nil, err
		}
		return []rexec.ProcessConfig{
			{ID: "cmake", Name: "cmake", Args: []string{source}, CWD: p.build.BuildDir, Log: true},
			{ID: "make", Name: "make", Args: []string{"-C", p.build.BuildDir, "-s"}, Log: true},
		}, nil
	case stageSolve:
		procs := make([]rexec.ProcessConfig, 0, len(SolverSteps)+len(p.build.Processes))
		for _, step := range SolverSteps {
			procs = append(procs, rexec.ProcessConfig{
				ID:   "geosolve_" + step,
				Name: p.build.Geosolve,
				Args: []string{p.dataRoot, p.resultsDir, step},
				Log:  true,
			})
		}
		return append(procs, p.build.Processes...), nil
	case stageOrthoimage:
		return nil, nil
	default:
		return nil, errors.Errorf("unknown stage %q", stage)
	}
}

// RunAllAction is the corresponding action for 'run-all'.
func RunAllAction(c *cli.Context) error {
	if err := requireArgs(c, "[all|build|solve|orthoimage]"); err != nil {
		return err
	}
	var stages []string
	switch command := argOr(c, 0, stageAll); command {
	case stageAll:
		stages = []string{stageBuild, stageSolve, stageOrthoimage}
	case stageBuild, stageSolve, stageOrthoimage:
		stages = []string{command}
	default:
		return errors.Errorf("unknown run-all command %q, expected all, build, solve or orthoimage", command)
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}

	p := newPipeline(env.cfg)
	pm := NewProgressManager(c.App.Writer, nil, WithProgressOutput(c.App.Writer == os.Stdout))
	defer pm.Stop()
	for _, stage := range stages {
		if err := p.runStage(c.Context, env, pm, stage); err != nil {
			return errors.Wrapf(err, "%s stage failed", stage)
		}
	}
	return nil
}

func (p pipeline) runStage(ctx context.Context, env *commandEnv, pm *ProgressManager, stage string) (err error) {
	procs, err := p.processes(stage)
	if err != nil {
		return err
	}
	pm.AddStep(&Step{ID: stage, Message: "running " + stage})
	for _, proc := range procs {
		pm.AddStep(&Step{ID: stage + "/" + proc.ID, Message: proc.CommandLine(), IndentLevel: 1})
	}
	if err := pm.Start(stage); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			//nolint:errcheck
			pm.Fail(stage, err)
			return
		}
		//nolint:errcheck
		pm.Complete(stage)
	}()

	if stage == stageBuild {
		if err := os.MkdirAll(p.build.BuildDir, 0o750); err != nil {
			return err
		}
	}
	for _, proc := range procs {
		if err := runStep(ctx, env.logger.Sublogger(stage), pm, stage+"/"+proc.ID, proc); err != nil {
			return err
		}
	}

	if stage == stageOrthoimage {
		out, err := runOrthoimage(ctx, env.logger, orthoimageArgs{
			DataRoot:     p.dataRoot,
			ProjectDir:   p.resultsDir,
			Model:        -1,
			Solution:     -1,
			PreviewWidth: env.cfg.Ortho.PreviewWidth,
			Quality:      env.cfg.Ortho.JPEGQuality,
			Ortho:        ortho.Options{GSD: env.cfg.Ortho.GSD, Elevation: env.cfg.Ortho.Elevation},
		})
		if err != nil {
			return err
		}
		env.logger.Infow("orthoimage written", "path", out)
	}
	return nil
}

func runStep(ctx context.Context, logger logging.Logger, pm *ProgressManager, stepID string, proc rexec.ProcessConfig) error {
	if err := proc.Validate(stepID); err != nil {
		return err
	}
	if err := pm.Start(stepID); err != nil {
		return err
	}
	if err := rexec.NewManagedProcess(proc, logger).Start(ctx); err != nil {
		//nolint:errcheck
		pm.Fail(stepID, err)
		return err
	}
	return pm.Complete(stepID)
}
