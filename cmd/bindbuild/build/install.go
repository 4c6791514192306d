package build

import (
	"github.com/spf13/cobra"

	"github.com/dobrovols/bindbuild/pkg/driver"
)

// NewInstallCommand constructs the `bindbuild install` command.
func NewInstallCommand(rt *Runtime) *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Build the bindings and install them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runInstall(cmd, opts, *rt, defaultDeps)
		},
	}
	registerOptionFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the driver steps without running them")
	markDeclarative(cmd)
	return cmd
}

// RunInstallForTest executes the install flow with explicit dependencies (used in tests).
func RunInstallForTest(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) error {
	return runInstall(cmd, opts, rt, deps)
}

// runInstall finalizes, delegates to the build steps (whose finalization is then a no-op) and
// runs the install step.
func runInstall(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) (err error) {
	w, err := newWorkflow(cmd, opts, rt, deps)
	if err != nil {
		return err
	}
	format, err := resolveOutput(opts.Output, cmd.OutOrStdout(), w.deps.IsTerminal)
	if err != nil {
		return err
	}

	metadata := w.metadata()
	logWorkflowStart(w.logger, stepInstall, metadata)
	defer func() {
		if err != nil {
			logWorkflowFailure(w.logger, stepInstall, metadata, err)
		}
	}()

	cfg, err := w.finalize()
	if err != nil {
		return err
	}
	if err := w.run(driver.StepConfigure, driver.StepBuild); err != nil {
		return err
	}
	if err := w.run(driver.StepInstall); err != nil {
		return err
	}

	w.record(stepInstall, cfg)
	logWorkflowSuccess(w.logger, stepInstall, metadata)
	return emitReport(cmd.OutOrStdout(), format, cfg, rt.Residual, opts.DryRun, w.steps(), nil)
}
