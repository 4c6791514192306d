package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	clilogging "github.com/dobrovols/bindbuild/internal/cli/logging"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// CommandResult captures the outcome of executing a step.
type CommandResult struct {
	ExitCode int
	Stderr   string
	Err      error
}

// CommandExecutor executes a step and reports its result.
type CommandExecutor func(ctx context.Context, step Step) CommandResult

// Runner executes driver steps.
type Runner interface {
	Run(ctx context.Context, step Step) error
}

// ErrEmptyCommand is returned for a step without a command.
var ErrEmptyCommand = errors.New("step has no command")

// StepError reports a failed step.
type StepError struct {
	Kind     StepKind
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s step failed (exit code %d): %v", e.Kind, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s step failed (exit code %d)", e.Kind, e.ExitCode)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExecExecutor returns a CommandExecutor running steps as child processes. Output is streamed to
// stdout and stderr; stderr is also captured for the failure excerpt.
func ExecExecutor(stdout, stderr io.Writer) CommandExecutor {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return func(ctx context.Context, step Step) CommandResult {
		if len(step.Command) == 0 {
			return CommandResult{ExitCode: 1, Err: ErrEmptyCommand}
		}
		var captured bytes.Buffer
		cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...)
		cmd.Dir = step.Dir
		cmd.Env = append(os.Environ(), envList(step.Env)...)
		cmd.Stdout = stdout
		cmd.Stderr = io.MultiWriter(stderr, &captured)

		err := cmd.Run()
		result := CommandResult{Stderr: captured.String()}
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case err != nil:
			result.ExitCode = 1
			result.Err = err
		}
		return result
	}
}

// LoggingRunner executes steps while emitting structured command logs.
type LoggingRunner struct {
	exec        CommandExecutor
	logger      telemetry.StructuredLogger
	stderrLimit int
}

// NewLoggingRunner constructs a LoggingRunner. Commands, environment and stderr are sanitized
// before they are logged.
func NewLoggingRunner(exec CommandExecutor, logger telemetry.StructuredLogger, stderrLimit int) *LoggingRunner {
	if exec == nil {
		panic("driver: command executor is required")
	}
	if logger == nil {
		panic("driver: structured logger is required")
	}
	if stderrLimit <= 0 {
		stderrLimit = 4096
	}
	return &LoggingRunner{exec: exec, logger: logger, stderrLimit: stderrLimit}
}

// Run executes the step and returns a *StepError when it fails.
func (l *LoggingRunner) Run(ctx context.Context, step Step) error {
	command := clilogging.SanitizeCommand(step.Command)
	env := clilogging.SanitizeEnv(step.Env)

	l.emit(telemetry.Entry{
		Category: telemetry.CategoryCommand,
		Message:  step.Title() + " started",
		Severity: telemetry.SeverityInfo,
		Step:     string(step.Kind),
		Command:  command,
		Metadata: envMetadata(env),
	})

	result := l.exec(ctx, step)
	severity := telemetry.SeverityInfo
	exitCode := result.ExitCode
	if result.Err != nil && exitCode == 0 {
		exitCode = 1
	}
	if exitCode != 0 {
		severity = telemetry.SeverityError
	}

	var excerpt string
	if exitCode != 0 && result.Stderr != "" {
		excerpt = result.Stderr
		if len(excerpt) > l.stderrLimit {
			excerpt = excerpt[len(excerpt)-l.stderrLimit:]
		}
		excerpt = clilogging.SanitizeText(excerpt)
	}

	metadata := envMetadata(env)
	metadata["exitCode"] = strconv.Itoa(exitCode)
	l.emit(telemetry.Entry{
		Category:      telemetry.CategoryCommand,
		Message:       step.Title() + " finished",
		Severity:      severity,
		Step:          string(step.Kind),
		Command:       command,
		StderrExcerpt: excerpt,
		Metadata:      metadata,
		Error:         result.Err,
	})

	if exitCode != 0 {
		return &StepError{Kind: step.Kind, ExitCode: exitCode, Err: result.Err}
	}
	return nil
}

func (l *LoggingRunner) emit(entry telemetry.Entry) {
	if err := l.logger.Emit(entry); err != nil {
		log.Printf("driver: structured log emit failed: %v", err)
	}
}

// Execute runs steps in order and stops at the first failure.
func Execute(ctx context.Context, runner Runner, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runner.Run(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func envMetadata(env []string) map[string]string {
	meta := make(map[string]string, len(env))
	for _, pair := range env {
		key, value, _ := strings.Cut(pair, "=")
		meta["env."+strings.ToLower(key)] = value
	}
	return meta
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
