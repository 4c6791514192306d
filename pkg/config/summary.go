package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Supported summary output formats.
const (
	SummaryFormatText = "text"
	SummaryFormatJSON = "json"
)

const unsetPlaceholder = "(unset)"

// FormatSummary renders the resolved configuration and the residual arguments.
func FormatSummary(cfg *Config, residual []string, format string) (string, error) {
	if cfg == nil {
		return "", errors.New("configuration is nil")
	}

	switch strings.ToLower(format) {
	case "", SummaryFormatText:
		return formatSummaryText(cfg, residual), nil
	case SummaryFormatJSON:
		return formatSummaryJSON(cfg, residual)
	default:
		return "", fmt.Errorf("unsupported summary format %q", format)
	}
}

func formatSummaryText(cfg *Config, residual []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Build configuration (%s)", cfg.Platform)
	tw.AppendHeader(table.Row{"Setting", "Value"})
	for _, e := range cfg.Entries() {
		tw.AppendRow(table.Row{e.Key, displayValue(e.Value)})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"residual args", strings.Join(residual, " ")})
	return tw.Render()
}

func formatSummaryJSON(cfg *Config, residual []string) (string, error) {
	settings := make(map[string]any, len(cfg.Entries()))
	for _, e := range cfg.Entries() {
		settings[e.Key] = e.Value
	}
	if residual == nil {
		residual = []string{}
	}

	payload := map[string]any{
		"platform":     cfg.Platform,
		"settings":     settings,
		"residualArgs": residual,
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary json: %w", err)
	}
	return string(encoded), nil
}

func displayValue(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return unsetPlaceholder
	}
	return v
}
