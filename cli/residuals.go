package cli

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/geosolve/geotools/analysis"
	"github.com/geosolve/geotools/plots"
	"github.com/geosolve/geotools/rimage/transform"
)

const (
	residualHistogramBins  = 20
	residualHistogramWidth = 50
)

// ResidualsAction is the corresponding action for 'residuals'.
func ResidualsAction(c *cli.Context) error {
	if err := requireArgs(c, "<project.json>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	solution := c.Int(orthoFlagSolution)
	loaded, err := loadSolution(c.Args().First(), c.Int(orthoFlagModel), solution)
	if err != nil {
		return err
	}
	views, err := loaded.proj.Views(loaded.model, solution)
	if err != nil {
		return err
	}
	camera := c.Int(dtmFlagCamera)
	if camera < 0 || camera >= len(views) {
		return errors.Errorf("camera %d out of range, the solution has %d", camera, len(views))
	}

	graph := modelGraph(loaded.proj, loaded.model)
	if graph == nil {
		return errors.New("project has no features to compare against")
	}
	edge, err := graph.Edge(c.Int(residualsFlagEdge))
	if err != nil {
		return err
	}
	var observations []transform.Pixel
	switch camera {
	case edge.CamA:
		observations = edge.ObsA
	case edge.CamB:
		observations = edge.ObsB
	default:
		return errors.Errorf("correspondences %d join cameras %d and %d, not camera %d",
			c.Int(residualsFlagEdge), edge.CamA, edge.CamB, camera)
	}

	terrain := loaded.solution.Terrain
	if c.Bool(residualsFlagInit) {
		elevation := float64Or(c, orthoFlagElevation, env.cfg.Ortho.Elevation)
		if edge.CamA >= len(views) || edge.CamB >= len(views) {
			return errors.Errorf("correspondences reference cameras %d and %d but the solution has %d",
				edge.CamA, edge.CamB, len(views))
		}
		terrain, err = analysis.InverseFeaturesAverage(views[edge.CamA], views[edge.CamB], edge.ObsA, edge.ObsB, elevation)
		if err != nil {
			return errors.Wrap(err, "cannot initialise terrain")
		}
		env.logger.Debugw("terrain initialised from correspondences", "points", len(terrain), "elevation", elevation)
	}

	residuals, err := analysis.ComputeResiduals(views[camera], observations, terrain)
	if err != nil {
		return err
	}
	summary, err := analysis.SummarizeResiduals(residuals)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", summary)
	if err := analysis.FprintHistogram(c.App.Writer, analysis.ResidualNorms(residuals),
		residualHistogramBins, residualHistogramWidth); err != nil {
		return err
	}

	if path := c.String(residualsFlagPlot); path != "" {
		p, err := plots.Scatter(
			lo.Map(residuals, func(r transform.Pixel, _ int) float64 { return r.I }),
			lo.Map(residuals, func(r transform.Pixel, _ int) float64 { return r.J }),
			true, "I residual (px)", "J residual (px)")
		if err != nil {
			return err
		}
		if err := plots.Save(p, plots.BoxSize, path); err != nil {
			return err
		}
		env.logger.Infow("residual plot written", "path", path)
	}
	return nil
}
