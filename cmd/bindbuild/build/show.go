package build

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dobrovols/bindbuild/internal/validation"
	"github.com/dobrovols/bindbuild/pkg/config"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// NewOptionsCommand constructs the `bindbuild options` command, which prints the resolved
// configuration. A validation failure is reported alongside the unvalidated values instead of
// aborting.
func NewOptionsCommand(rt *Runtime) *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the resolved build configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runOptions(cmd, opts, *rt, defaultDeps)
		},
	}
	registerOptionFlags(cmd, &opts)
	markDeclarative(cmd)
	return cmd
}

// RunOptionsForTest executes the options flow with explicit dependencies (used in tests).
func RunOptionsForTest(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) error {
	return runOptions(cmd, opts, rt, deps)
}

func runOptions(cmd *cobra.Command, opts Options, rt Runtime, deps Deps) error {
	w, err := newWorkflow(cmd, opts, rt, deps)
	if err != nil {
		return err
	}
	format, err := resolveOutput(opts.Output, cmd.OutOrStdout(), w.deps.IsTerminal)
	if err != nil {
		return err
	}

	cfg, err := w.finalize()
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		_ = w.logger.Emit(telemetry.Entry{
			Category: telemetry.CategoryConfig,
			Message:  verr.Message,
			Severity: telemetry.SeverityWarn,
			Step:     stepOptions,
			Metadata: map[string]string{"check": string(verr.Step)},
		})
		cfg = config.New(rt.Settings, opts.Command, opts.Command.QMake != "", rt.Finalizer.Platform())
	case err != nil:
		return err
	}
	return emitReport(cmd.OutOrStdout(), format, cfg, rt.Residual, false, nil, err)
}
