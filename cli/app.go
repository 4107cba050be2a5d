// Package cli contains the geotools command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags shared by several commands.
const (
	generalFlagDebug  = "debug"
	generalFlagConfig = "config"

	orthoFlagGSD          = "gsd"
	orthoFlagElevation    = "elevation"
	orthoFlagModel        = "model"
	orthoFlagSolution     = "solution"
	orthoFlagOut          = "out"
	orthoFlagOverlays     = "overlays"
	orthoFlagPreviewWidth = "preview-width"
	orthoFlagQuality      = "quality"

	dtmFlagCamera  = "camera"
	dtmFlagFormat  = "format"
	dtmFlagFlatten = "flatten"

	residualsFlagEdge = "edge"
	residualsFlagPlot = "plot"
	residualsFlagInit = "init"

	featuresFlagThreshold  = "threshold"
	featuresFlagCount      = "count"
	featuresFlagAlgorithms = "algorithms"

	potreeFlagConverterDir = "converter-dir"
	potreeFlagPotreeDir    = "potree-dir"
)

var app = &cli.App{
	Name:            "geotools",
	Usage:           "orthorectify and inspect photogrammetric solves",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE` (default $HOME/.geotools/config.json)",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "orthoimage",
			Usage:     "orthorectify the images of a solve onto a flat terrain",
			ArgsUsage: "<data_root> <project_dir>",
			Flags: append(solutionFlags(),
				&cli.Float64Flag{
					Name:  orthoFlagGSD,
					Usage: "ground sample distance of the tile, 0 uses the native resolution of the first camera",
				},
				&cli.StringFlag{
					Name:  orthoFlagOut,
					Usage: "output image `FILE`, format by extension (default <project_dir>/orthoimage.jpg)",
				},
				&cli.BoolFlag{
					Name:  orthoFlagOverlays,
					Usage: "draw camera traces and correspondences on top of the imagery",
				},
				&cli.IntFlag{
					Name:  orthoFlagPreviewWidth,
					Usage: "width of the preview image, 0 disables it",
				},
				&cli.IntFlag{
					Name:  orthoFlagQuality,
					Usage: "JPEG quality",
				},
			),
			Action: OrthoimageAction,
		},
		{
			Name:      "dtm",
			Usage:     "export the terrain of a solve as a colored point cloud",
			ArgsUsage: "<data_root> <project_dir>",
			Flags: append(solutionFlags(),
				&cli.IntFlag{
					Name:  dtmFlagCamera,
					Usage: "camera whose image colors the points",
				},
				&cli.StringFlag{
					Name:  dtmFlagFormat,
					Usage: "point cloud format, one of xyz, pcd or las",
					Value: "xyz",
				},
				&cli.BoolFlag{
					Name:  dtmFlagFlatten,
					Usage: "replace the terrain heights by the elevation",
					Value: true,
				},
			),
			Action: DTMAction,
		},
		{
			Name:      "residuals",
			Usage:     "print the reprojection residuals of a camera",
			ArgsUsage: "<project.json>",
			Flags: append(solutionFlags(),
				&cli.IntFlag{
					Name:  dtmFlagCamera,
					Usage: "camera to project the terrain into",
				},
				&cli.IntFlag{
					Name:  residualsFlagEdge,
					Usage: "correspondence set holding the observations of the camera",
				},
				&cli.StringFlag{
					Name:  residualsFlagPlot,
					Usage: "save a scatter plot of the residuals to `FILE`",
				},
				&cli.BoolFlag{
					Name:  residualsFlagInit,
					Usage: "use the terrain initialisation of the correspondences instead of the solved terrain",
				},
			),
			Action: ResidualsAction,
		},
		{
			Name:      "bootstrap",
			Usage:     "plot the correlations of the bootstrap samples of a project",
			ArgsUsage: "<project_dir>",
			Action:    BootstrapAction,
		},
		{
			Name:      "features-analysis",
			Usage:     "plot distance, angle and coverage statistics of a set of matches",
			ArgsUsage: "<dir>",
			Action:    FeaturesAnalysisAction,
		},
		{
			Name:      "outlier-analysis",
			Usage:     "plot the outlier fraction of every match directory with a threshold",
			ArgsUsage: "<dir>",
			Action:    OutlierAnalysisAction,
		},
		{
			Name:      "features-table",
			Usage:     "tabulate first outlier and coverage per algorithm",
			ArgsUsage: "<dir>",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:  featuresFlagThreshold,
					Usage: "match angle in degrees above which a match is an outlier",
					Value: 1,
				},
			},
			Action: FeaturesTableAction,
		},
		{
			Name:      "match-features",
			Usage:     "detect and match features between two images",
			ArgsUsage: "<image1> <image2> <out_dir>",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:  featuresFlagAlgorithms,
					Usage: "detectors to run, among ORB, BRISK, KAZE and AKAZE",
					Value: cli.NewStringSlice("ORB"),
				},
			},
			Action: MatchFeaturesAction,
		},
		{
			Name:      "view-angle",
			Usage:     "plot the match angle of every match, sorted by distance",
			ArgsUsage: "[dir]",
			Action:    ViewAngleAction,
		},
		{
			Name:      "spatial-chi2",
			Usage:     "test the matches of the first image for spatial uniformity",
			ArgsUsage: "<dir>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  featuresFlagCount,
					Usage: "cells per image side, 0 uses the square root of the match count",
				},
			},
			Action: SpatialChi2Action,
		},
		{
			Name:      "potree",
			Usage:     "convert a DTM for the potree viewer",
			ArgsUsage: "[dtm_dir]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  potreeFlagConverterDir,
					Usage: "directory holding the PotreeConverter executable",
				},
				&cli.StringFlag{
					Name:  potreeFlagPotreeDir,
					Usage: "potree checkout to copy the viewer assets from",
				},
			},
			Action: PotreeAction,
		},
		{
			Name:      "run-all",
			Usage:     "build geosolve, solve the data set and orthorectify the result",
			ArgsUsage: "[all|build|solve|orthoimage]",
			Action:    RunAllAction,
		},
	},
}

func solutionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  orthoFlagElevation,
			Usage: "elevation of the flat terrain",
		},
		&cli.IntFlag{
			Name:  orthoFlagModel,
			Usage: "model of the project, negative counts from the last one",
			Value: -1,
		},
		&cli.IntFlag{
			Name:  orthoFlagSolution,
			Usage: "solution of the model, negative counts from the last one",
			Value: -1,
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
