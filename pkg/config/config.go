package config

import (
	"github.com/dobrovols/bindbuild/pkg/options"
)

// CommandOptions is the option bundle shared by the build and install commands.
type CommandOptions struct {
	AvoidProtectedHack    bool
	Debug                 bool
	RelWithDebInfo        bool
	OnlyPackage           bool
	Standalone            bool
	IgnoreGit             bool
	SkipDocs              bool
	NoExamples            bool
	NoJom                 bool
	BuildTests            bool
	UseXvfb               bool
	ReuseBuild            bool
	CompilerLauncher      string
	SkipCMake             bool
	SkipMakeInstall       bool
	SkipPackaging         bool
	VerboseBuild          bool
	SanitizeAddress       bool
	ShorterPaths          bool
	DocBuildOnline        bool
	QtPaths               string
	QMake                 string
	QtVersion             string
	CMake                 string
	OpenSSL               string
	ShibokenConfigDir     string
	MakeSpec              string
	MacOSArch             string
	MacOSSysroot          string
	MacOSDeploymentTarget string
	SkipModules           string
	ModuleSubset          string
	RPath                 string
	QtConfPrefix          string
	QtSrcDir              string
	NoQtTools             bool
	NumpySupport          bool
}

// DefaultQtVersion is used when --qt is not given.
const DefaultQtVersion = "5"

// Config is the final configuration handed to the build driver. Finalization builds it once;
// consumers must treat it as read-only.
type Config struct {
	options.Settings
	CommandOptions

	// HasQMakeOption is set when --qmake was given and legacy discovery is enforced.
	HasQMakeOption bool
	Platform       string
}

// New combines startup settings and finalized command options.
func New(settings options.Settings, opts CommandOptions, hasQMake bool, platform string) *Config {
	return &Config{
		Settings:       settings,
		CommandOptions: opts,
		HasQMakeOption: hasQMake,
		Platform:       platform,
	}
}

// Entry is one symbolic setting of a Config.
type Entry struct {
	Key   string
	Value any
}

// Entries lists the configuration under its symbolic keys in a stable order.
func (c *Config) Entries() []Entry {
	if c == nil {
		return nil
	}
	return []Entry{
		{"BUILD_TYPE", c.BuildType},
		{"INTERNAL_BUILD_TYPE", c.InternalBuildType},
		{"JOBS", c.Jobs},
		{"JOM", c.Jom},
		{"MACOS_USE_LIBCPP", c.MacOSUseLibcpp},
		{"QUIET", c.Quiet},
		{"SNAPSHOT_BUILD", c.SnapshotBuild},
		{"LIMITED_API", c.LimitedAPI},
		{"PACKAGE_TIMESTAMP", c.PackageTimestamp},
		{"FINAL_INSTALL_PREFIX", c.FinalInstallPrefix},
		{"AVOID_PROTECTED_HACK", c.AvoidProtectedHack},
		{"DEBUG", c.Debug},
		{"RELWITHDEBINFO", c.RelWithDebInfo},
		{"ONLYPACKAGE", c.OnlyPackage},
		{"STANDALONE", c.Standalone},
		{"IGNOREGIT", c.IgnoreGit},
		{"SKIP_DOCS", c.SkipDocs},
		{"NOEXAMPLES", c.NoExamples},
		{"BUILDTESTS", c.BuildTests},
		{"NO_JOM", c.NoJom},
		{"XVFB", c.UseXvfb},
		{"REUSE_BUILD", c.ReuseBuild},
		{"COMPILER_LAUNCHER", c.CompilerLauncher},
		{"SKIP_CMAKE", c.SkipCMake},
		{"SKIP_MAKE_INSTALL", c.SkipMakeInstall},
		{"SKIP_PACKAGING", c.SkipPackaging},
		{"VERBOSE_BUILD", c.VerboseBuild},
		{"SANITIZE_ADDRESS", c.SanitizeAddress},
		{"SHORTER_PATHS", c.ShorterPaths},
		{"DOC_BUILD_ONLINE", c.DocBuildOnline},
		{"QTPATHS", c.QtPaths},
		{"QMAKE", c.QMake},
		{"HAS_QMAKE_OPTION", c.HasQMakeOption},
		{"QT_VERSION", c.QtVersion},
		{"CMAKE", c.CMake},
		{"OPENSSL", c.OpenSSL},
		{"SHIBOKEN_CONFIG_DIR", c.ShibokenConfigDir},
		{"MAKESPEC", c.MakeSpec},
		{"MACOS_ARCH", c.MacOSArch},
		{"MACOS_SYSROOT", c.MacOSSysroot},
		{"MACOS_DEPLOYMENT_TARGET", c.MacOSDeploymentTarget},
		{"SKIP_MODULES", c.SkipModules},
		{"MODULE_SUBSET", c.ModuleSubset},
		{"RPATH_VALUES", c.RPath},
		{"QT_CONF_PREFIX", c.QtConfPrefix},
		{"QT_SRC", c.QtSrcDir},
		{"NO_QT_TOOLS", c.NoQtTools},
		{"PYSIDE_NUMPY_SUPPORT", c.NumpySupport},
	}
}

// Lookup returns the value stored under a symbolic key.
func (c *Config) Lookup(key string) (any, bool) {
	for _, e := range c.Entries() {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
