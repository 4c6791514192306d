package validation

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/dobrovols/bindbuild/pkg/config"
	"github.com/dobrovols/bindbuild/pkg/options"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

// PlatformWindows is the GOOS value that switches make-spec and jom rules.
const PlatformWindows = "windows"

// qtpaths candidates, probed in order when no discovery tool was given.
var qtPathsCandidates = []string{"qtpaths", "qtpaths6"}

// MakeSpecs returns the supported make-specs of a platform; the first entry is the default.
func MakeSpecs(platform string) []string {
	if platform == PlatformWindows {
		return []string{"ninja", "msvc", "mingw"}
	}
	return []string{"ninja", "make"}
}

// Finalizer validates command options and derives the final configuration. It runs its checks
// only once: the install command finalizes before delegating to build, which finalizes again.
type Finalizer struct {
	locator  ToolLocator
	platform string
	logger   telemetry.StructuredLogger

	once sync.Once
	cfg  *config.Config
	err  error
	done bool
}

// NewFinalizer constructs a Finalizer. A nil locator uses the host and an empty platform uses
// runtime.GOOS.
func NewFinalizer(locator ToolLocator, platform string, logger telemetry.StructuredLogger) *Finalizer {
	if locator == nil {
		locator = DefaultLocator{}
	}
	if platform == "" {
		platform = runtime.GOOS
	}
	return &Finalizer{locator: locator, platform: platform, logger: logger}
}

// Finalize validates opts and returns the configuration. Later calls return the first outcome
// without re-running any check.
func (f *Finalizer) Finalize(opts config.CommandOptions, settings options.Settings) (*config.Config, error) {
	f.once.Do(func() {
		f.cfg, f.err = f.finalize(opts, settings)
		f.done = true
	})
	return f.cfg, f.err
}

// Finalized reports whether Finalize already ran.
func (f *Finalizer) Finalized() bool { return f.done }

// Platform returns the platform the rules are evaluated for.
func (f *Finalizer) Platform() string { return f.platform }

func (f *Finalizer) finalize(opts config.CommandOptions, settings options.Settings) (*config.Config, error) {
	hasQMake, err := f.check(&opts, settings)
	if err != nil {
		return nil, err
	}

	if opts.QtPaths != "" {
		opts.QtPaths = f.abs(opts.QtPaths)
	}
	if opts.QMake != "" {
		opts.QMake = f.abs(opts.QMake)
	}
	opts.CMake = f.abs(opts.CMake)
	if opts.QtVersion == "" {
		opts.QtVersion = config.DefaultQtVersion
	}

	return config.New(settings, opts, hasQMake, f.platform), nil
}

// check applies the validation sequence. The first failing step ends it.
func (f *Finalizer) check(opts *config.CommandOptions, settings options.Settings) (bool, error) {
	if opts.CMake == "" {
		if path, ok := f.locator.LookPath("cmake"); ok {
			opts.CMake = path
		}
	}
	if opts.CMake == "" {
		return false, newError(StepCMake, ErrCMakeNotFound, "cmake could not be found.")
	}
	if !f.locator.Exists(opts.CMake) {
		return false, newError(StepCMake, ErrToolMissing, fmt.Sprintf("'%s' does not exist.", opts.CMake))
	}

	// An explicit qmake enforces legacy discovery.
	hasQMake := false
	if opts.QMake != "" {
		hasQMake = true
		options.WarnDeprecated(f.logger, "qmake")
	}

	if opts.QMake == "" && opts.QtPaths == "" {
		for _, candidate := range qtPathsCandidates {
			if path, ok := f.locator.LookPath(candidate); ok {
				opts.QtPaths = path
				break
			}
		}
	}

	if opts.QtPaths == "" && opts.QMake == "" {
		return false, newError(StepDiscovery, ErrQtPathsRequired,
			"No value provided to --qtpaths option. Please provide one to find Qt.")
	}

	if opts.QtPaths != "" && !f.locator.Exists(opts.QtPaths) {
		return false, newError(StepToolPath, ErrToolMissing,
			fmt.Sprintf("The specified qtpaths path '%s' does not exist.", opts.QtPaths))
	}
	if opts.QMake != "" && !f.locator.Exists(opts.QMake) {
		return false, newError(StepToolPath, ErrToolMissing,
			fmt.Sprintf("The specified qmake path '%s' does not exist.", opts.QMake))
	}

	specs := MakeSpecs(f.platform)
	if opts.MakeSpec == "" {
		opts.MakeSpec = specs[0]
	}
	if !slices.Contains(specs, opts.MakeSpec) {
		return false, newError(StepMakeSpec, ErrInvalidMakeSpec,
			fmt.Sprintf("Invalid option --make-spec %q. Available values are [%s]", opts.MakeSpec, strings.Join(specs, ", ")))
	}

	if settings.Jobs != "" && f.platform == PlatformWindows && opts.NoJom {
		return false, newError(StepJobs, ErrJobsRequireJom, "Option --jobs can only be used with jom on Windows.")
	}

	return hasQMake, nil
}

func (f *Finalizer) abs(path string) string {
	abs, err := f.locator.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
