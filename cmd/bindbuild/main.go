package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	buildcmd "github.com/dobrovols/bindbuild/cmd/bindbuild/build"
	"github.com/dobrovols/bindbuild/internal/cli"
	telemetryinit "github.com/dobrovols/bindbuild/internal/telemetry"
	"github.com/dobrovols/bindbuild/internal/validation"
	"github.com/dobrovols/bindbuild/pkg/options"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

var (
	telemetryInit = telemetryinit.InitProvider
	rootCommand   = cli.NewRootCommand
	newLocator    = func() validation.ToolLocator { return validation.DefaultLocator{} }
	lookupEnv     = os.LookupEnv
	logOutput     io.Writer = os.Stderr
	osExit        = os.Exit
)

func main() {
	if code := run(os.Args[1:]); code != 0 {
		osExit(code)
	}
}

func run(args []string) int {
	ctx := context.Background()
	shutdown, err := telemetryInit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
	}
	if shutdown != nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, telemetryinit.ShutdownTimeout)
		defer func() {
			defer cancel()
			if err := shutdown(cleanupCtx); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry shutdown error: %v\n", err)
			}
		}()
	}

	emitter, err := telemetry.NewEmitter(logOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize structured logging: %v\n", err)
		return 1
	}
	logger := emitter.StructuredLogger()

	settings, residual, err := options.Resolve(args, lookupEnv, logger)
	if err != nil {
		return fail(logger, err)
	}
	logger.SetQuiet(settings.Quiet)
	_ = emitter.Emit(telemetry.Event{
		Phase:    telemetry.PhaseResolve,
		Outcome:  "success",
		Metadata: map[string]string{"residualArgs": strconv.Itoa(len(residual))},
	})

	rt := &buildcmd.Runtime{
		Settings:  settings,
		Residual:  residual,
		Emitter:   emitter,
		Finalizer: validation.NewFinalizer(newLocator(), "", logger),
	}
	cmd := rootCommand(rt)
	cmd.SetArgs(append([]string{}, residual...))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return fail(logger, err)
	}
	return 0
}

// fail reports err and maps it to the process exit status.
func fail(logger telemetry.StructuredLogger, err error) int {
	fmt.Fprintln(os.Stderr, err)

	var missing *options.MissingValueError
	var verr *validation.Error
	switch {
	case errors.As(err, &missing):
		_ = logger.Emit(telemetry.Entry{
			Category: telemetry.CategoryOption,
			Message:  "option resolution failed",
			Option:   missing.Option,
			Error:    err,
		})
		return options.ExitCodeMissingValue
	case errors.As(err, &verr):
		return verr.Code
	default:
		return 1
	}
}
