package rexec

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/geosolve/geotools/logging"
)

// ProcessManager runs processes in the order they were added.
type ProcessManager interface {
	// AddProcessFromConfig queues a process. Ids must be unique.
	AddProcessFromConfig(config ProcessConfig) error
	// ProcessIDs returns the ids of the queued processes in run order.
	ProcessIDs() []string
	// Start runs every queued process and stops at the first failure.
	Start(ctx context.Context) error
}

type processManager struct {
	mu        sync.Mutex
	processes []*ManagedProcess
	logger    logging.Logger
}

// NewProcessManager returns an empty manager.
func NewProcessManager(logger logging.Logger) ProcessManager {
	return &processManager{logger: logger}
}

func (pm *processManager) AddProcessFromConfig(config ProcessConfig) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if err := config.Validate(fmt.Sprintf("processes.%d", len(pm.processes))); err != nil {
		return err
	}
	for _, proc := range pm.processes {
		if proc.ID() == config.ID {
			return errors.Errorf("process %q already added", config.ID)
		}
	}
	logger := pm.logger.Sublogger(fmt.Sprintf("process.%s", config.ID))
	pm.processes = append(pm.processes, NewManagedProcess(config, logger))
	return nil
}

func (pm *processManager) ProcessIDs() []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	ids := make([]string, 0, len(pm.processes))
	for _, proc := range pm.processes {
		ids = append(ids, proc.ID())
	}
	return ids
}

func (pm *processManager) Start(ctx context.Context) error {
	pm.mu.Lock()
	processes := append([]*ManagedProcess(nil), pm.processes...)
	pm.mu.Unlock()
	for _, proc := range processes {
		if err := proc.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}
