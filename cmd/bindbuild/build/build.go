package build

import (
	"github.com/spf13/cobra"

	"github.com/dobrovols/bindbuild/pkg/driver"
)

const (
	stepBuild   = "build"
	stepInstall = "install"
	stepOptions = "options"
)

// NewBuildCommand constructs the `bindbuild build` command.
func NewBuildCommand(rt *Runtime) *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Configure and build the bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runBuild(cmd, opts, *rt, defaultDeps)
		},
	}
	registerOptionFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the driver steps without running them")
	markDeclarative(cmd)
	return cmd
}

// RunBuildForTest executes the build flow with explicit dependencies (used in tests).
func RunBuildForTest(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) error {
	return runBuild(cmd, opts, rt, deps)
}

func runBuild(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) (err error) {
	w, err := newWorkflow(cmd, opts, rt, deps)
	if err != nil {
		return err
	}
	format, err := resolveOutput(opts.Output, cmd.OutOrStdout(), w.deps.IsTerminal)
	if err != nil {
		return err
	}

	metadata := w.metadata()
	logWorkflowStart(w.logger, stepBuild, metadata)
	defer func() {
		if err != nil {
			logWorkflowFailure(w.logger, stepBuild, metadata, err)
		}
	}()

	if err := w.run(driver.StepConfigure, driver.StepBuild); err != nil {
		return err
	}
	cfg, err := w.finalize()
	if err != nil {
		return err
	}

	w.record(stepBuild, cfg)
	logWorkflowSuccess(w.logger, stepBuild, metadata)
	return emitReport(cmd.OutOrStdout(), format, cfg, rt.Residual, opts.DryRun, w.steps(), nil)
}

func (w *workflow) steps() []driver.Step {
	if w.opts.DryRun {
		return w.planned
	}
	return w.ran
}
