package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

type progressSpinner interface {
	Stop() error
	Success(...any)
	Fail(...any)
}

type progressSpinnerFactory func(string) (progressSpinner, error)

var defaultSpinnerFactory progressSpinnerFactory = func(text string) (progressSpinner, error) {
	spinner, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}
	return spinner, nil
}

// StepStatus represents the state of a pipeline step.
type StepStatus int

const (
	// StepPending indicates a step has not yet started.
	StepPending StepStatus = iota
	// StepRunning indicates a step is currently in progress.
	StepRunning
	// StepCompleted indicates a step finished successfully.
	StepCompleted
	// StepFailed indicates a step encountered an error.
	StepFailed
)

// Step is one stage of a pipeline such as run-all.
type Step struct {
	ID          string
	Message     string
	Status      StepStatus
	IndentLevel int // 0 = stage, 1 = command of a stage
	startTime   time.Time
}

// ProgressManager reports the steps of a pipeline one after the other. Stages print a header
// line, commands get a spinner.
type ProgressManager struct {
	out            io.Writer
	steps          []*Step
	stepMap        map[string]*Step
	currentSpinner progressSpinner
	spinnerFactory progressSpinnerFactory
	mu             sync.Mutex
	disabled       bool
}

// ProgressManagerOption allows customizing ProgressManager behavior at creation time.
type ProgressManagerOption func(*ProgressManager)

// WithProgressOutput enables or disables terminal output for a ProgressManager.
func WithProgressOutput(enabled bool) ProgressManagerOption {
	return func(pm *ProgressManager) {
		pm.disabled = !enabled
	}
}

func withProgressSpinnerFactory(factory progressSpinnerFactory) ProgressManagerOption {
	return func(pm *ProgressManager) {
		pm.spinnerFactory = factory
	}
}

// NewProgressManager creates a ProgressManager with all steps registered upfront. Stage
// headers are written to out.
func NewProgressManager(out io.Writer, steps []*Step, opts ...ProgressManagerOption) *ProgressManager {
	pterm.Success.Prefix = pterm.Prefix{Text: "✓", Style: pterm.NewStyle(pterm.FgGreen)}
	pterm.Error.Prefix = pterm.Prefix{Text: "✗", Style: pterm.NewStyle(pterm.FgRed)}

	stepMap := make(map[string]*Step, len(steps))
	for _, step := range steps {
		stepMap[step.ID] = step
	}
	pm := &ProgressManager{
		out:            out,
		steps:          steps,
		stepMap:        stepMap,
		spinnerFactory: defaultSpinnerFactory,
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// AddStep registers a step after creation, for pipelines that grow from the config.
func (pm *ProgressManager) AddStep(step *Step) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.steps = append(pm.steps, step)
	pm.stepMap[step.ID] = step
}

// Steps returns the registered steps in order.
func (pm *ProgressManager) Steps() []*Step {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return append([]*Step(nil), pm.steps...)
}

func getPrefix(step *Step) string {
	if step.IndentLevel == 0 {
		return ""
	}
	return strings.Repeat("  ", step.IndentLevel) + "→ "
}

func (pm *ProgressManager) step(stepID string) (*Step, error) {
	step, ok := pm.stepMap[stepID]
	if !ok {
		return nil, fmt.Errorf("step %q not found", stepID)
	}
	return step, nil
}

// Start marks a step as running.
func (pm *ProgressManager) Start(stepID string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}
	step.Status = StepRunning
	step.startTime = time.Now()

	if pm.disabled {
		return nil
	}
	if step.IndentLevel == 0 {
		fmt.Fprintf(pm.out, " …  %s\n", step.Message) //nolint:errcheck
		return nil
	}
	if pm.currentSpinner != nil {
		_ = pm.currentSpinner.Stop() //nolint:errcheck
	}
	spinner, err := pm.spinnerFactory(" " + getPrefix(step) + step.Message)
	if err != nil {
		return fmt.Errorf("failed to start spinner: %w", err)
	}
	pm.currentSpinner = spinner
	return nil
}

// Complete marks a step as completed and prints how long it took.
func (pm *ProgressManager) Complete(stepID string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}
	step.Status = StepCompleted

	elapsed := ""
	if !step.startTime.IsZero() {
		elapsed = fmt.Sprintf(" (%s)", time.Since(step.startTime).Round(time.Second))
	}
	if pm.disabled {
		return nil
	}
	msg := getPrefix(step) + step.Message + elapsed
	if pm.currentSpinner != nil {
		pm.currentSpinner.Success(" " + msg)
		pm.currentSpinner = nil
		return nil
	}
	pterm.Success.Println(msg)
	return nil
}

// Fail marks a step as failed.
func (pm *ProgressManager) Fail(stepID string, cause error) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	step, err := pm.step(stepID)
	if err != nil {
		return err
	}
	step.Status = StepFailed

	if pm.disabled {
		return nil
	}
	msg := fmt.Sprintf("%s%s: %v", getPrefix(step), step.Message, cause)
	if pm.currentSpinner != nil {
		pm.currentSpinner.Fail(" " + msg)
		pm.currentSpinner = nil
		return nil
	}
	pterm.Error.Println(msg)
	return nil
}

// Stop stops any active spinner.
func (pm *ProgressManager) Stop() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.currentSpinner != nil {
		_ = pm.currentSpinner.Stop() //nolint:errcheck
		pm.currentSpinner = nil
	}
}
