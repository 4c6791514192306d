package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dobrovols/bindbuild/cmd/bindbuild/declarative"
	tracing "github.com/dobrovols/bindbuild/internal/telemetry"
	"github.com/dobrovols/bindbuild/internal/validation"
	"github.com/dobrovols/bindbuild/pkg/config"
	"github.com/dobrovols/bindbuild/pkg/driver"
	"github.com/dobrovols/bindbuild/pkg/options"
	"github.com/dobrovols/bindbuild/pkg/state"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// Runtime carries the startup resolution shared by every command of one run.
type Runtime struct {
	Settings  options.Settings
	Residual  []string
	Emitter   *telemetry.Emitter
	Finalizer *validation.Finalizer
}

// RecordStore persists the build record of a build tree.
type RecordStore interface {
	Read(buildDir string) (state.Record, error)
	Write(buildDir string, record state.Record) (string, error)
}

// Deps configures the side effects of the commands. A nil Records skips the build record.
type Deps struct {
	Executor   driver.CommandExecutor
	Layout     func(*config.Config) driver.Layout
	IsTerminal func(io.Writer) bool
	Records    RecordStore
}

var errRuntimeRequired = errors.New("command runtime is not initialized")

var defaultDeps = Deps{
	Executor:   driver.ExecExecutor(nil, nil),
	Layout:     defaultLayout,
	IsTerminal: isTerminal,
	Records:    state.NewManager(),
}

// defaultLayout treats an existing CMake cache as reusable unless the build record shows it was
// configured with a different build type or make-spec.
func defaultLayout(cfg *config.Config) driver.Layout {
	buildDir := driver.DefaultBuildDir(cfg)
	_, err := os.Stat(filepath.Join(buildDir, "CMakeCache.txt"))
	reusable := err == nil
	if reusable {
		if record, err := state.NewManager().Read(buildDir); err == nil {
			reusable = record.Compatible(driver.BuildType(cfg), cfg.MakeSpec)
		}
	}
	return driver.Layout{SourceDir: ".", BuildDir: buildDir, CacheExists: reusable}
}

func (d Deps) withDefaults() Deps {
	if d.Executor == nil {
		d.Executor = defaultDeps.Executor
	}
	if d.Layout == nil {
		d.Layout = defaultDeps.Layout
	}
	if d.IsTerminal == nil {
		d.IsTerminal = defaultDeps.IsTerminal
	}
	return d
}

// workflow is one command invocation: finalization, planning and execution of driver steps.
type workflow struct {
	cmd     *cobra.Command
	opts    Options
	rt      Runtime
	deps    Deps
	logger  telemetry.StructuredLogger
	layout  driver.Layout
	planned []driver.Step
	ran     []driver.Step
}

func newWorkflow(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) (*workflow, error) {
	if rt.Emitter == nil || rt.Finalizer == nil {
		return nil, errRuntimeRequired
	}
	w := &workflow{cmd: cmd, opts: opts, rt: rt, deps: deps.withDefaults(), logger: rt.Emitter.StructuredLogger()}
	if resolved, ok := declarative.ResolvedInvocationFromContext(cmd); ok {
		declarative.EmitTelemetry(w.logger, resolved)
	}
	return w, nil
}

func (w *workflow) context() context.Context {
	if ctx := w.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (w *workflow) metadata() map[string]string {
	return map[string]string{
		"command":  w.cmd.Name(),
		"platform": w.rt.Finalizer.Platform(),
	}
}

// finalize validates the command options. Only the first call of a run validates; later calls
// (install delegating to build) return the cached configuration without a span or phase event.
func (w *workflow) finalize() (*config.Config, error) {
	if w.rt.Finalizer.Finalized() {
		return w.rt.Finalizer.Finalize(w.opts.Command, w.rt.Settings)
	}

	var cfg *config.Config
	err := w.rt.Emitter.EmitPhase(telemetry.PhaseFinalize, w.metadata(), func() error {
		ctx, span := tracing.StartSpan(w.context(), "finalize",
			attribute.String("platform", w.rt.Finalizer.Platform()),
			attribute.String("command", w.cmd.Name()),
		)
		var err error
		cfg, err = w.rt.Finalizer.Finalize(w.opts.Command, w.rt.Settings)
		tracing.RecordFinalize(ctx, w.rt.Finalizer.Platform(), err)
		tracing.EndSpan(span, err)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// run plans the configuration and executes the steps of the given kinds, or only records them
// for a dry run.
func (w *workflow) run(kinds ...driver.StepKind) error {
	cfg, err := w.finalize()
	if err != nil {
		return err
	}
	w.layout = w.deps.Layout(cfg)
	steps, err := driver.Plan(cfg, w.layout)
	if err != nil {
		return err
	}

	runner := driver.NewLoggingRunner(w.deps.Executor, w.logger, 0)
	for _, step := range steps {
		if !slices.Contains(kinds, step.Kind) {
			continue
		}
		if w.opts.DryRun {
			w.planned = append(w.planned, step)
			continue
		}
		if err := w.rt.Emitter.EmitPhase(phaseFor(step.Kind), w.metadata(), func() error {
			return runner.Run(w.context(), step)
		}); err != nil {
			return fmt.Errorf("%s: %w", step.Title(), err)
		}
		w.ran = append(w.ran, step)
	}
	return nil
}

// record stores the build record after a successful run. A write failure is logged and does not
// fail the command.
func (w *workflow) record(action string, cfg *config.Config) {
	if w.opts.DryRun || w.deps.Records == nil || w.layout.BuildDir == "" {
		return
	}
	steps := make([]string, 0, len(w.ran))
	for _, step := range w.ran {
		steps = append(steps, string(step.Kind))
	}
	record := state.Record{
		LastAction: action,
		Platform:   cfg.Platform,
		BuildType:  driver.BuildType(cfg),
		MakeSpec:   cfg.MakeSpec,
		QtVersion:  cfg.QtVersion,
		Jobs:       cfg.Jobs,
		Steps:      steps,
	}
	record.WorkflowID = w.rt.Emitter.StructuredLogger().WorkflowID()

	path, err := w.deps.Records.Write(w.layout.BuildDir, record)
	if err != nil {
		logWorkflowEntry(w.logger, action, "build record not written", telemetry.SeverityWarn,
			map[string]string{"buildDir": w.layout.BuildDir}, err)
		return
	}
	logWorkflowEntry(w.logger, action, "build record written", telemetry.SeverityInfo,
		map[string]string{"path": path}, nil)
}

func phaseFor(kind driver.StepKind) telemetry.Phase {
	switch kind {
	case driver.StepConfigure:
		return telemetry.PhaseConfigure
	case driver.StepInstall:
		return telemetry.PhaseInstall
	default:
		return telemetry.PhaseBuild
	}
}
