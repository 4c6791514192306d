package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	clilogging "github.com/dobrovols/bindbuild/internal/cli/logging"
	"github.com/dobrovols/bindbuild/pkg/config"
	"github.com/dobrovols/bindbuild/pkg/driver"
)

const outputAuto = "auto"

var errUnsupportedOutput = errors.New("unsupported output format")

// ErrUnsupportedOutput exposes the sentinel.
func ErrUnsupportedOutput() error { return errUnsupportedOutput }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resolveOutput maps --output to a summary format. auto renders text on a terminal and JSON
// otherwise.
func resolveOutput(value string, w io.Writer, isTerm func(io.Writer) bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case config.SummaryFormatText:
		return config.SummaryFormatText, nil
	case config.SummaryFormatJSON:
		return config.SummaryFormatJSON, nil
	case "", outputAuto:
		if isTerm(w) {
			return config.SummaryFormatText, nil
		}
		return config.SummaryFormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedOutput, value)
	}
}

type stepReport struct {
	Step    string `json:"step"`
	Command string `json:"command"`
}

type report struct {
	DryRun          bool            `json:"dryRun"`
	Summary         json.RawMessage `json:"summary"`
	Steps           []stepReport    `json:"steps"`
	ValidationError string          `json:"validationError,omitempty"`
}

// emitReport prints the configuration followed by the planned or executed steps.
func emitReport(w io.Writer, format string, cfg *config.Config, residual []string, dryRun bool, steps []driver.Step, validationErr error) error {
	summary, err := config.FormatSummary(cfg, residual, format)
	if err != nil {
		return err
	}

	if format == config.SummaryFormatText {
		fmt.Fprintln(w, summary)
		if validationErr != nil {
			fmt.Fprintf(w, "Validation failed: %v\n", validationErr)
		}
		switch {
		case dryRun && len(steps) > 0:
			fmt.Fprintln(w, "Dry-run; planned steps:")
			fmt.Fprintln(w, driver.FormatPlan(steps))
		case len(steps) > 0:
			titles := make([]string, len(steps))
			for i, s := range steps {
				titles[i] = s.Title()
			}
			fmt.Fprintf(w, "Completed steps: %s\n", strings.Join(titles, ", "))
		}
		return nil
	}

	out := report{DryRun: dryRun, Summary: json.RawMessage(summary), Steps: []stepReport{}}
	for _, s := range steps {
		out.Steps = append(out.Steps, stepReport{Step: string(s.Kind), Command: clilogging.SanitizeCommand(s.Command)})
	}
	if validationErr != nil {
		out.ValidationError = validationErr.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
