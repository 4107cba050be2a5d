// Package main is the geotools command.
package main

import (
	"os"

	"github.com/geosolve/geotools/cli"
	"github.com/geosolve/geotools/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
