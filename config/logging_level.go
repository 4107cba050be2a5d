package config

import (
	"github.com/geosolve/geotools/logging"
)

// InitLoggingSettings sets the level of logger from the command line debug flag and the
// config file. Either one turns debug logs on.
func InitLoggingSettings(logger logging.Logger, cmdLineDebugFlag bool, cfg *Config) {
	level := logging.INFO
	if cmdLineDebugFlag || (cfg != nil && cfg.Debug) {
		level = logging.DEBUG
	}
	logger.SetLevel(level)
	logger.Debugw("log level initialized", "level", level)
}
