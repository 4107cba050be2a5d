package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/ortho"
	"github.com/geosolve/geotools/pointcloud"
	"github.com/geosolve/geotools/project"
	"github.com/geosolve/geotools/rimage"
)

// Output names under the project directory.
const (
	OrthoimageFilename = "orthoimage.jpg"
	flatDTMDir         = "flatdtm"
	dtmDir             = "dtm"
)

type orthoimageArgs struct {
	DataRoot     string
	ProjectDir   string
	Model        int
	Solution     int
	Out          string
	PreviewWidth int
	Quality      int
	Ortho        ortho.Options
}

// OrthoimageAction is the corresponding action for 'orthoimage'.
func OrthoimageAction(c *cli.Context) error {
	if err := requireArgs(c, "<data_root>", "<project_dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	args := orthoimageArgs{
		DataRoot:     c.Args().Get(0),
		ProjectDir:   c.Args().Get(1),
		Model:        c.Int(orthoFlagModel),
		Solution:     c.Int(orthoFlagSolution),
		Out:          c.String(orthoFlagOut),
		PreviewWidth: intOr(c, orthoFlagPreviewWidth, env.cfg.Ortho.PreviewWidth),
		Quality:      intOr(c, orthoFlagQuality, env.cfg.Ortho.JPEGQuality),
		Ortho: ortho.Options{
			GSD:       float64Or(c, orthoFlagGSD, env.cfg.Ortho.GSD),
			Elevation: float64Or(c, orthoFlagElevation, env.cfg.Ortho.Elevation),
			Overlays:  c.Bool(orthoFlagOverlays),
		},
	}
	out, err := runOrthoimage(c.Context, env.logger, args)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "orthoimage written to %s", out)
	return nil
}

func runOrthoimage(ctx context.Context, logger logging.Logger, args orthoimageArgs) (string, error) {
	loaded, err := loadSolution(args.ProjectDir, args.Model, args.Solution)
	if err != nil {
		return "", err
	}
	views, err := loaded.proj.Views(loaded.model, args.Solution)
	if err != nil {
		return "", err
	}
	sources := make([]ortho.Source, len(views))
	for i, v := range views {
		path, err := loaded.proj.DataSet.ImagePath(args.DataRoot, i)
		if err != nil {
			return "", err
		}
		img, err := rimage.ReadImageFromFile(path)
		if err != nil {
			return "", err
		}
		sources[i] = ortho.Source{Name: filepath.Base(path), View: v, Image: img}
	}

	tile, err := ortho.Orthorectify(ctx, logger, sources, modelPairs(loaded.proj, loaded.model), args.Ortho)
	if err != nil {
		return "", err
	}

	out := args.Out
	if out == "" {
		out = filepath.Join(args.ProjectDir, OrthoimageFilename)
	}
	if args.PreviewWidth > 0 && tile.Geometry.Cols > args.PreviewWidth {
		ext := filepath.Ext(out)
		preview := strings.TrimSuffix(out, ext) + "_preview" + ext
		if err := tile.SavePreview(preview, args.PreviewWidth, args.Quality); err != nil {
			return "", err
		}
		logger.Infow("preview written", "path", preview, "width", args.PreviewWidth)
	}
	if err := tile.Save(out, args.Quality); err != nil {
		return "", err
	}
	return out, nil
}

// modelGraph is the features a model was solved from, or the first features of the project.
func modelGraph(proj *project.Project, m project.Model) *project.ImageGraph {
	if terrain, ok := m.(*project.ModelTerrain); ok && terrain.Features != nil {
		return terrain.Features
	}
	if len(proj.FeaturesList) > 0 {
		return proj.FeaturesList[0]
	}
	return nil
}

// modelPairs are the correspondences drawn by the overlays.
func modelPairs(proj *project.Project, m project.Model) []ortho.Pair {
	graph := modelGraph(proj, m)
	if graph == nil {
		return nil
	}
	pairs := make([]ortho.Pair, len(graph.Edges))
	for k, e := range graph.Edges {
		pairs[k] = ortho.Pair{CamA: e.CamA, CamB: e.CamB, ObsA: e.ObsA, ObsB: e.ObsB}
	}
	return pairs
}

// DTMAction is the corresponding action for 'dtm'.
func DTMAction(c *cli.Context) error {
	if err := requireArgs(c, "<data_root>", "<project_dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	ext := "." + strings.TrimPrefix(strings.ToLower(c.String(dtmFlagFormat)), ".")
	switch ext {
	case pointcloud.XYZExt, pointcloud.PCDExt, pointcloud.LASExt:
	default:
		return errors.Errorf("unknown point cloud format %q, expected xyz, pcd or las", c.String(dtmFlagFormat))
	}

	dataRoot, projectDir := c.Args().Get(0), c.Args().Get(1)
	loaded, err := loadSolution(projectDir, c.Int(orthoFlagModel), c.Int(orthoFlagSolution))
	if err != nil {
		return err
	}
	views, err := loaded.proj.Views(loaded.model, c.Int(orthoFlagSolution))
	if err != nil {
		return err
	}
	camera := c.Int(dtmFlagCamera)
	if camera < 0 || camera >= len(views) {
		return errors.Errorf("camera %d out of range, the solution has %d", camera, len(views))
	}
	path, err := loaded.proj.DataSet.ImagePath(dataRoot, camera)
	if err != nil {
		return err
	}
	img, err := rimage.ReadImageFromFile(path)
	if err != nil {
		return err
	}

	opts := pointcloud.DTMOptions{
		Flatten:   c.Bool(dtmFlagFlatten),
		Elevation: float64Or(c, orthoFlagElevation, env.cfg.Ortho.Elevation),
	}
	cloud, skipped, err := pointcloud.NewDTM(views[camera], img, loaded.solution.Terrain, opts)
	if err != nil {
		return err
	}
	if skipped > 0 {
		env.logger.Warnw("terrain points outside the image were skipped", "skipped", skipped, "camera", camera)
	}

	dir := filepath.Join(projectDir, dtmDir)
	if opts.Flatten {
		dir = filepath.Join(projectDir, flatDTMDir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	out := filepath.Join(dir, strings.TrimSuffix(pointcloud.DTMFilename, pointcloud.XYZExt)+ext)
	if err := pointcloud.WriteToFile(cloud, out); err != nil {
		return err
	}
	printf(c.App.Writer, "%d points written to %s", cloud.Size(), out)
	return nil
}
