package options

import (
	"strings"

	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// Settings holds the options every command needs before the command framework parses flags.
type Settings struct {
	BuildType          string
	InternalBuildType  string
	Jobs               string
	Jom                bool
	MacOSUseLibcpp     bool
	Quiet              bool
	SnapshotBuild      bool
	LimitedAPI         string
	PackageTimestamp   string
	FinalInstallPrefix string
	// Store keeps every raw lookup, including absent values and their origins.
	Store Store
}

// Resolve runs the startup option scan over args. The input slice is left untouched; the returned
// residual list is what remains for the command framework.
func Resolve(args []string, env LookupEnv, logger telemetry.StructuredLogger) (Settings, []string, error) {
	r := NewResolver(args, env, logger)
	s, err := r.resolveSettings()
	if err != nil {
		return Settings{}, nil, err
	}
	return s, r.Residual(), nil
}

func (r *Resolver) resolveSettings() (Settings, error) {
	var (
		s   Settings
		err error
	)
	if s.BuildType, _, err = r.ValueOf("build-type", "", true); err != nil {
		return Settings{}, err
	}
	if s.InternalBuildType, _, err = r.ValueOf("internal-build-type", "", true); err != nil {
		return Settings{}, err
	}
	if s.Jobs, err = r.JobsFlag(); err != nil {
		return Settings{}, err
	}
	// jom is legacy and only consumed so it does not reach the commands.
	s.Jom = r.HasFlag("jom", true)
	s.MacOSUseLibcpp = r.HasFlag("macos-use-libc++", true)
	s.Quiet = r.HasFlag("quiet", false)
	s.SnapshotBuild = r.HasFlag("snapshot-build", true)
	if s.LimitedAPI, _, err = r.ValueOf("limited-api", "", true); err != nil {
		return Settings{}, err
	}
	if s.PackageTimestamp, _, err = r.ValueOf("package-timestamp", "", true); err != nil {
		return Settings{}, err
	}
	if s.FinalInstallPrefix, _, err = r.ValueOf("prefix", "", false); err != nil {
		return Settings{}, err
	}

	jobs, _, err := r.ValueOfDeprecated("jobs")
	if err != nil {
		return Settings{}, err
	}
	if jobs != "" {
		s.Jobs = NormalizeJobs(jobs)
	}

	s.Store = r.Store()
	return s, nil
}

// JobsFlag resolves --parallel / -j into the flag handed to the build driver.
func (r *Resolver) JobsFlag() (string, error) {
	value, _, err := r.ValueOf("parallel", "j", true)
	if err != nil {
		return "", err
	}
	return NormalizeJobs(value), nil
}

// NormalizeJobs prefixes a job count with -j. Empty stays empty and "-jN" is passed through.
func NormalizeJobs(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "-j") {
		return value
	}
	return "-j" + value
}
