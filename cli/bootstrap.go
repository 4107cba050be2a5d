package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/geosolve/geotools/analysis"
	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/plots"
	"github.com/geosolve/geotools/project"
)

// BootstrapAction is the corresponding action for 'bootstrap'.
func BootstrapAction(c *cli.Context) error {
	if err := requireArgs(c, "<project_dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	projectDir := c.Args().First()
	proj, err := project.Load(projectPath(projectDir))
	if err != nil {
		return err
	}
	if len(proj.Bootstraps) == 0 {
		return errors.Errorf("project %s has no bootstraps", projectDir)
	}
	for n, b := range proj.Bootstraps {
		if b == nil {
			continue
		}
		dir := filepath.Join(projectDir, BootstrapDir(n, b))
		if err := plotBootstrap(env.logger, b, dir); err != nil {
			return errors.Wrapf(err, "bootstrap %d", n)
		}
		printf(c.App.Writer, "bootstrap %d: %d samples plotted in %s", n, len(b.Samples), dir)
	}
	return nil
}

// BootstrapDir names the output directory of bootstrap n after its base model.
func BootstrapDir(n int, b *project.Bootstrap) string {
	return fmt.Sprintf("bootstrap%d-%s", n, project.ModelName(b.BaseModel))
}

func plotBootstrap(logger logging.Logger, b *project.Bootstrap, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	internals, err := b.Internals()
	if err != nil {
		return err
	}
	corr, err := analysis.Correlation(internals)
	if err != nil {
		return err
	}
	_, width := internals.Dims()
	if err := saveHinton(logger, corr, analysis.InternalLabels(width), filepath.Join(dir, "covariance-interior")); err != nil {
		return err
	}

	cameras, err := b.Cameras()
	if err != nil {
		return err
	}
	for n, cam := range cameras {
		if err := plotBootstrapCamera(logger, cam, dir, n); err != nil {
			return errors.Wrapf(err, "camera %d", n)
		}
	}
	return nil
}

func plotBootstrapCamera(logger logging.Logger, cam *mat.Dense, dir string, n int) error {
	xy, err := plots.Scatter(analysis.Column(cam, 0), analysis.Column(cam, 1), false, "X", "Y")
	if err != nil {
		return err
	}
	if err := saveFigure(logger, xy, plots.WideSize, filepath.Join(dir, fmt.Sprintf("cam%d-xy", n))); err != nil {
		return err
	}

	samples, _ := cam.Dims()
	bins := samples / 6
	if bins < 1 {
		bins = 1
	}
	z, err := plots.Histogram(analysis.Column(cam, 2), bins, true, "Z", "Frequency")
	if err != nil {
		return err
	}
	if err := saveFigure(logger, z, plots.WideSize, filepath.Join(dir, fmt.Sprintf("cam%d-z", n))); err != nil {
		return err
	}

	corr, err := analysis.Correlation(cam)
	if err != nil {
		return err
	}
	pos, err := analysis.SubCorrelation(corr, 0, 3)
	if err != nil {
		return err
	}
	if err := saveHinton(logger, pos, analysis.PositionLabels,
		filepath.Join(dir, fmt.Sprintf("covariance-cam%d-pos", n))); err != nil {
		return err
	}
	angles, err := analysis.SubCorrelation(corr, 3, 6)
	if err != nil {
		return err
	}
	return saveHinton(logger, angles, analysis.AngleLabels,
		filepath.Join(dir, fmt.Sprintf("covariance-cam%d-angles", n)))
}

func saveHinton(logger logging.Logger, m mat.Matrix, labels []string, base string) error {
	p, err := plots.HintonPlot(m, labels)
	if err != nil {
		return err
	}
	return saveFigure(logger, p, plots.BoxSize, base)
}
