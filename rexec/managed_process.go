package rexec

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/geosolve/geotools/logging"
)

// ManagedProcess is a one shot external program.
type ManagedProcess struct {
	config ProcessConfig
	logger logging.Logger
}

// NewManagedProcess returns a process that runs config when started.
func NewManagedProcess(config ProcessConfig, logger logging.Logger) *ManagedProcess {
	return &ManagedProcess{config: config, logger: logger}
}

// ID returns the id of the process.
func (p *ManagedProcess) ID() string {
	return p.config.ID
}

// resolveName finds the program to run. Names with a path separator are resolved against
// the working directory of the process, the others are looked up in PATH.
func (p *ManagedProcess) resolveName() (string, error) {
	name := p.config.Name
	if !strings.ContainsRune(name, filepath.Separator) {
		path, err := exec.LookPath(name)
		return path, errors.Wrapf(err, "cannot find %q", name)
	}
	if !filepath.IsAbs(name) && p.config.CWD != "" {
		name = filepath.Join(p.config.CWD, name)
	}
	path, err := exec.LookPath(name)
	return path, errors.Wrapf(err, "cannot find %q", name)
}

// Start runs the process to completion. A canceled context kills it.
func (p *ManagedProcess) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "process %s not started", p.config.ID)
	}
	name, err := p.resolveName()
	if err != nil {
		return err
	}

	//nolint:gosec
	cmd := exec.CommandContext(ctx, name, p.config.Args...)
	cmd.Dir = p.config.CWD
	out := &lineLogger{logger: p.logger, enabled: p.config.Log}
	cmd.Stdout = out
	cmd.Stderr = out

	p.logger.Debugw("running process", "id", p.config.ID, "cmd", p.config.CommandLine(), "cwd", p.config.CWD)
	runErr := cmd.Run()
	out.flush()
	if runErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "process %s", p.config.ID)
	}
	if p.config.AllowFailure {
		p.logger.Warnw("process failed", "id", p.config.ID, "error", runErr)
		return nil
	}
	return errors.Wrapf(runErr, "process %s (%s) failed", p.config.ID, p.config.CommandLine())
}

// lineLogger forwards complete lines of output to a logger.
type lineLogger struct {
	mu      sync.Mutex
	logger  logging.Logger
	enabled bool
	buf     bytes.Buffer
}

func (l *lineLogger) Write(data []byte) (int, error) {
	if !l.enabled {
		return len(data), nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(data)
	for {
		line, err := l.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			l.buf.Reset()
			l.buf.WriteString(line)
			break
		}
		l.logger.Info(strings.TrimRight(line, "\r\n"))
	}
	return len(data), nil
}

func (l *lineLogger) flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() > 0 {
		l.logger.Info(l.buf.String())
		l.buf.Reset()
	}
}
