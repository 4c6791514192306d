package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	clilogging "github.com/dobrovols/bindbuild/internal/cli/logging"
	"github.com/dobrovols/bindbuild/pkg/config"
)

// StepKind names a build-driver phase.
type StepKind string

const (
	StepConfigure StepKind = "configure"
	StepBuild     StepKind = "build"
	StepInstall   StepKind = "install"
)

// Step is one driver invocation.
type Step struct {
	Kind    StepKind
	Command []string
	Env     map[string]string
	Dir     string
}

// Title is the human-readable step name.
func (s Step) Title() string {
	return cases.Title(language.English).String(string(s.Kind))
}

// Layout locates the source tree and the build tree.
type Layout struct {
	SourceDir string
	BuildDir  string
	// CacheExists reports a previous configure in BuildDir; with --reuse-build it skips configure.
	CacheExists bool
}

// ErrNoConfig is returned when Plan receives a nil configuration.
var ErrNoConfig = errors.New("build configuration is required")

var generators = map[string]string{
	"ninja": "Ninja",
	"make":  "Unix Makefiles",
	"msvc":  "NMake Makefiles",
	"mingw": "MinGW Makefiles",
}

// BuildType derives the CMake build type. An explicit --build-type wins over --debug and
// --relwithdebinfo.
func BuildType(cfg *config.Config) string {
	switch {
	case cfg.BuildType != "":
		return cfg.BuildType
	case cfg.Debug:
		return "Debug"
	case cfg.RelWithDebInfo:
		return "RelWithDebInfo"
	default:
		return "Release"
	}
}

// DefaultBuildDir is the build tree used when none is configured.
func DefaultBuildDir(cfg *config.Config) string {
	name := fmt.Sprintf("qfp-qt%s-%s", cfg.QtVersion, strings.ToLower(BuildType(cfg)))
	if cfg.ShorterPaths {
		name = "b"
	}
	return filepath.Join("build", name)
}

// Plan turns a finalized configuration into the ordered driver steps.
func Plan(cfg *config.Config, layout Layout) ([]Step, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if layout.SourceDir == "" {
		layout.SourceDir = "."
	}
	if layout.BuildDir == "" {
		layout.BuildDir = DefaultBuildDir(cfg)
	}

	var steps []Step
	if !cfg.SkipCMake && !(cfg.ReuseBuild && layout.CacheExists) {
		steps = append(steps, configureStep(cfg, layout))
	}
	steps = append(steps, buildStep(cfg, layout))
	if !cfg.SkipMakeInstall {
		steps = append(steps, Step{
			Kind:    StepInstall,
			Command: []string{cfg.CMake, "--install", layout.BuildDir},
			Dir:     layout.SourceDir,
		})
	}
	return steps, nil
}

func configureStep(cfg *config.Config, layout Layout) Step {
	generator := generators[cfg.MakeSpec]
	if cfg.MakeSpec == "msvc" && !cfg.NoJom {
		generator = "NMake Makefiles JOM"
	}

	args := []string{cfg.CMake, "-S", layout.SourceDir, "-B", layout.BuildDir}
	if generator != "" {
		args = append(args, "-G", generator)
	}
	define := func(name, value string) {
		args = append(args, "-D"+name+"="+value)
	}

	define("CMAKE_BUILD_TYPE", BuildType(cfg))
	if cfg.QMake != "" {
		define("QT_QMAKE_EXECUTABLE", cfg.QMake)
	} else if cfg.QtPaths != "" {
		define("QTPATHS_EXECUTABLE", cfg.QtPaths)
	}
	if cfg.FinalInstallPrefix != "" {
		define("CMAKE_INSTALL_PREFIX", cfg.FinalInstallPrefix)
	}
	if cfg.CompilerLauncher != "" {
		define("CMAKE_C_COMPILER_LAUNCHER", cfg.CompilerLauncher)
		define("CMAKE_CXX_COMPILER_LAUNCHER", cfg.CompilerLauncher)
	}
	if cfg.ModuleSubset != "" {
		define("MODULES", cmakeList(cfg.ModuleSubset))
	}
	if cfg.SkipModules != "" {
		define("SKIP_MODULES", cmakeList(cfg.SkipModules))
	}
	if cfg.LimitedAPI != "" {
		define("FORCE_LIMITED_API", cfg.LimitedAPI)
	}
	if cfg.RPath != "" {
		define("CMAKE_INSTALL_RPATH", strings.ReplaceAll(cfg.RPath, ":", ";"))
	}
	if cfg.MacOSArch != "" {
		define("CMAKE_OSX_ARCHITECTURES", cfg.MacOSArch)
	}
	if cfg.MacOSSysroot != "" {
		define("CMAKE_OSX_SYSROOT", cfg.MacOSSysroot)
	}
	if cfg.OpenSSL != "" {
		define("OPENSSL_ROOT_DIR", cfg.OpenSSL)
	}
	if cfg.ShibokenConfigDir != "" {
		define("Shiboken_DIR", cfg.ShibokenConfigDir)
	}
	if cfg.QtSrcDir != "" {
		define("QT_SRC_DIR", cfg.QtSrcDir)
	}

	flags := []struct {
		on   bool
		name string
	}{
		{cfg.SanitizeAddress, "SANITIZE_ADDRESS"},
		{cfg.AvoidProtectedHack, "AVOID_PROTECTED_HACK"},
		{cfg.BuildTests, "BUILD_TESTS"},
		{cfg.SkipDocs, "SKIP_DOCSTRING_EXTRACTION"},
		{cfg.DocBuildOnline, "DOC_BUILD_ONLINE"},
		{cfg.NoQtTools, "NO_QT_TOOLS"},
		{cfg.NumpySupport, "PYSIDE_NUMPY_SUPPORT"},
		{cfg.MacOSUseLibcpp, "OSX_USE_LIBCPP"},
	}
	for _, f := range flags {
		if f.on {
			define(f.name, "ON")
		}
	}

	var env map[string]string
	if cfg.MacOSDeploymentTarget != "" {
		env = map[string]string{"MACOSX_DEPLOYMENT_TARGET": cfg.MacOSDeploymentTarget}
	}
	return Step{Kind: StepConfigure, Command: args, Env: env, Dir: layout.SourceDir}
}

func buildStep(cfg *config.Config, layout Layout) Step {
	args := []string{cfg.CMake, "--build", layout.BuildDir}
	if cfg.VerboseBuild {
		args = append(args, "--verbose")
	}
	if jobs := strings.TrimPrefix(cfg.Jobs, "-j"); jobs != "" {
		args = append(args, "--parallel", jobs)
	}
	return Step{Kind: StepBuild, Command: args, Dir: layout.SourceDir}
}

// cmakeList converts a comma separated option value to a CMake list.
func cmakeList(value string) string {
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ";")
}

// FormatPlan renders the steps as a table for --dry-run.
func FormatPlan(steps []Step) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Step", "Command"})
	for i, s := range steps {
		command := clilogging.SanitizeCommand(s.Command)
		if env := clilogging.SanitizeEnv(s.Env); len(env) > 0 {
			command = strings.Join(env, " ") + " " + command
		}
		tw.AppendRow(table.Row{i + 1, s.Title(), command})
	}
	return tw.Render()
}
