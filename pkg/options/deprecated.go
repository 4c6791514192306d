package options

import (
	"fmt"

	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

var deprecatedOptions = map[string]string{
	"jobs":  "parallel",
	"qmake": "qtpaths",
}

// Replacement returns the option superseding a deprecated name.
func Replacement(name string) (string, bool) {
	r, ok := deprecatedOptions[name]
	return r, ok
}

// ValueOfDeprecated resolves a deprecated valued option and warns once when it was given.
// The caller is expected to let the value override the replacement's setting.
func (r *Resolver) ValueOfDeprecated(name string) (string, bool, error) {
	if _, ok := deprecatedOptions[name]; !ok {
		return "", false, fmt.Errorf("option %q is not deprecated", name)
	}
	value, ok, err := r.ValueOf(name, "", true)
	if err != nil {
		return "", false, err
	}
	if ok && value != "" {
		WarnDeprecated(r.logger, name)
	}
	return value, ok, nil
}

// WarnDeprecated emits the deprecation warning for name, naming its replacement when known.
func WarnDeprecated(logger telemetry.StructuredLogger, name string) {
	if logger == nil {
		return
	}
	option := "--" + name
	msg := fmt.Sprintf("Option %q is deprecated and may be removed in a future release.", option)
	metadata := map[string]string{}
	if replacement, ok := deprecatedOptions[name]; ok {
		msg = fmt.Sprintf("%s Use %q instead.", msg, "--"+replacement)
		metadata["replacement"] = "--" + replacement
	}
	_ = logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryOption,
		Severity: telemetry.SeverityWarn,
		Message:  msg,
		Option:   option,
		Metadata: metadata,
	})
}
