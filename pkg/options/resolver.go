// Package options resolves build options from the process arguments and environment.
//
// A Resolver owns a private copy of the argument list. Every successful lookup consumes the
// matched tokens (unless asked not to), so the residual list handed to the command framework
// only contains what no option lookup claimed.
package options

import (
	"fmt"
	"os"
	"strings"

	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// LookupEnv reads an environment variable. os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

// Origin records where a resolved option value came from.
type Origin string

const (
	OriginUnset       Origin = "unset"
	OriginArgument    Origin = "argument"
	OriginEnvironment Origin = "environment"
)

// Value is the record kept in the Store for one option name.
type Value struct {
	Raw     string
	Present bool
	Origin  Origin
}

// Store maps option names to their last resolved value.
type Store map[string]Value

// Clone returns an independent copy of the store.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Resolver scans an argument list and the environment for options.
type Resolver struct {
	args   []string
	env    LookupEnv
	logger telemetry.StructuredLogger
	store  Store
}

// NewResolver copies args into a buffer owned by the resolver. A nil env falls back to
// os.LookupEnv; a nil logger discards warnings.
func NewResolver(args []string, env LookupEnv, logger telemetry.StructuredLogger) *Resolver {
	if env == nil {
		env = os.LookupEnv
	}
	return &Resolver{
		args:   append([]string(nil), args...),
		env:    env,
		logger: logger,
		store:  Store{},
	}
}

// Residual returns a copy of the arguments no lookup has consumed.
func (r *Resolver) Residual() []string {
	return append([]string(nil), r.args...)
}

// Store returns a copy of every value resolved so far.
func (r *Resolver) Store() Store {
	return r.store.Clone()
}

// HasFlag reports whether --name occurs in the arguments. With remove every occurrence is
// consumed; without it one occurrence (the last) is left for a later consumer.
func (r *Resolver) HasFlag(name string, remove bool) bool {
	option := "--" + name
	count := 0
	for _, arg := range r.args {
		if arg == option {
			count++
		}
	}

	removeCount := count
	if !remove && count > 0 {
		removeCount--
	}
	for i := 0; i < removeCount; i++ {
		r.removeFirst(option)
	}

	if count > 1 {
		r.warnMultiple(option)
	}
	return count > 0
}

// ValueOf resolves a valued option. It scans from the last argument to the first and accepts
// "--name VALUE", "-short VALUE" and "--name=VALUE". The first match of the scan binds the value;
// every further match only warns, and all matches are consumed when remove is set. Without a
// match the environment variable NAME (upper case, '-' as '_') is consulted.
func (r *Resolver) ValueOf(name, short string, remove bool) (string, bool, error) {
	option := "--" + name
	shortOption := ""
	if short != "" {
		shortOption = "-" + short
	}
	prefix := option + "="

	var (
		value  string
		bound  bool
		origin = OriginUnset
	)

	for index := len(r.args) - 1; index >= 0; index-- {
		arg := r.args[index]

		switch {
		case arg == option || (shortOption != "" && arg == shortOption):
			if bound && value != "" {
				r.warnMultiple(option)
			} else {
				if index+1 >= len(r.args) {
					return "", false, &MissingValueError{Option: option}
				}
				value, bound, origin = r.args[index+1], true, OriginArgument
			}
			if remove {
				// The option may be the last token once its value was consumed by an earlier match.
				end := min(index+2, len(r.args))
				r.args = append(r.args[:index], r.args[end:]...)
			}

		case strings.HasPrefix(arg, prefix):
			if bound && value != "" {
				r.warnMultiple(option)
			} else {
				value, bound, origin = arg[len(prefix):], true, OriginArgument
			}
			if remove {
				r.args = append(r.args[:index], r.args[index+1:]...)
			}
		}
	}

	if !bound {
		if v, ok := r.env(EnvName(name)); ok {
			value, bound, origin = v, true, OriginEnvironment
		}
	}

	r.store[name] = Value{Raw: value, Present: bound, Origin: origin}
	return value, bound, nil
}

// EnvName returns the environment variable consulted for an option name.
func EnvName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), "-", "_")
}

func (r *Resolver) removeFirst(token string) {
	for i, arg := range r.args {
		if arg == token {
			r.args = append(r.args[:i], r.args[i+1:]...)
			return
		}
	}
}

func (r *Resolver) warnMultiple(option string) {
	if r.logger == nil {
		return
	}
	_ = r.logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryOption,
		Severity: telemetry.SeverityWarn,
		Message:  fmt.Sprintf("Option %q occurs multiple times on the command line.", option),
		Option:   option,
	})
}
