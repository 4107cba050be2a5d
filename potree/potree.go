// Package potree publishes a DTM export as a Potree web viewer.
package potree

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/pointcloud"
	"github.com/geosolve/geotools/rexec"
	"github.com/geosolve/geotools/utils"
)

// Default locations of the Potree tooling, relative to the working directory.
const (
	DefaultConverterDir = "../PotreeConverter/build/PotreeConverter"
	DefaultPotreeDir    = "../potree"
)

// OutputDir is the directory created next to the DTM.
const OutputDir = "potree"

// ViewScriptName is the name of the script serving the viewer.
const ViewScriptName = "view_dtm.sh"

// AssetDirs are the potree directories the generated page loads.
var AssetDirs = []string{"build", "resources", "libs"}

const viewScript = `#!/bin/bash

i3-msg workspace 2
firefox -new-window http://0.0.0.0:8000/potree/examples/dtm.xyz.html
python3 -m http.server
`

// Options locates the tools and the DTM to convert.
type Options struct {
	// DTMDir holds dtm.xyz and receives the viewer.
	DTMDir string
	// ConverterDir holds the PotreeConverter executable.
	ConverterDir string
	// PotreeDir is a potree checkout with its build, resources and libs directories.
	PotreeDir string
}

func (opts Options) withDefaults() Options {
	if opts.DTMDir == "" {
		opts.DTMDir = "."
	}
	if opts.ConverterDir == "" {
		opts.ConverterDir = DefaultConverterDir
	}
	if opts.PotreeDir == "" {
		opts.PotreeDir = DefaultPotreeDir
	}
	return opts
}

// Processes returns the commands that publish the DTM: the potree assets are copied into the
// output directory, then PotreeConverter generates the octree and its html page there.
func Processes(opts Options) ([]rexec.ProcessConfig, error) {
	opts = opts.withDefaults()
	dtm, err := filepath.Abs(filepath.Join(opts.DTMDir, pointcloud.DTMFilename))
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(filepath.Join(opts.DTMDir, OutputDir))
	if err != nil {
		return nil, err
	}

	var procs []rexec.ProcessConfig
	for _, dir := range AssetDirs {
		procs = append(procs, rexec.ProcessConfig{
			ID:   "copy_" + dir,
			Name: "cp",
			Args: []string{"-r", filepath.Join(opts.PotreeDir, dir), out},
		})
	}
	procs = append(procs, rexec.ProcessConfig{
		ID:   "potree_converter",
		Name: "./PotreeConverter",
		Args: []string{dtm, "-o", out, "-p", "--color-range", "0", "255", "--input-format", "xyzrgb"},
		CWD:  opts.ConverterDir,
		Log:  true,
	})
	return procs, nil
}

// Publish converts DTMDir/dtm.xyz and writes the executable view script next to it.
func Publish(ctx context.Context, logger logging.Logger, opts Options) error {
	opts = opts.withDefaults()
	dtm := filepath.Join(opts.DTMDir, pointcloud.DTMFilename)
	if !utils.FileExists(dtm) {
		return errors.Errorf("%s does not exist", dtm)
	}
	cloud, err := pointcloud.NewFromFile(dtm, logger)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", dtm)
	}
	if cloud.Size() == 0 {
		return errors.Errorf("%s holds no points", dtm)
	}
	logger.Debugw("converting dtm", "path", dtm, "points", cloud.Size())
	procs, err := Processes(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(opts.DTMDir, OutputDir), 0o750); err != nil {
		return err
	}
	pm := rexec.NewProcessManager(logger)
	for _, p := range procs {
		if err := pm.AddProcessFromConfig(p); err != nil {
			return err
		}
	}
	if err := pm.Start(ctx); err != nil {
		return err
	}

	script := filepath.Join(opts.DTMDir, ViewScriptName)
	//nolint:gosec
	if err := os.WriteFile(script, []byte(viewScript), 0o755); err != nil {
		return err
	}
	logger.Infow("potree viewer ready", "script", script)
	return nil
}
