package build

import (
	"github.com/spf13/cobra"

	"github.com/dobrovols/bindbuild/cmd/bindbuild/declarative"
	"github.com/dobrovols/bindbuild/pkg/config"
)

// Options captures CLI flag values of the build, install and options commands.
type Options struct {
	Command config.CommandOptions
	DryRun  bool
	Output  string
}

func registerOptionFlags(cmd *cobra.Command, opts *Options) {
	f := cmd.Flags()
	c := &opts.Command

	f.BoolVar(&c.AvoidProtectedHack, "avoid-protected-hack", false, "Force --avoid-protected-hack")
	f.BoolVar(&c.Debug, "debug", false, "Build with debug information")
	f.BoolVar(&c.RelWithDebInfo, "relwithdebinfo", false, "Build in release mode with debug information")
	f.BoolVar(&c.OnlyPackage, "only-package", false, "Package only")
	f.BoolVar(&c.Standalone, "standalone", false, "Standalone build")
	f.BoolVar(&c.IgnoreGit, "ignore-git", false, "Do not update subrepositories")
	f.BoolVar(&c.SkipDocs, "skip-docs", false, "Skip documentation build")
	f.BoolVar(&c.NoExamples, "no-examples", false, "Do not build examples")
	f.BoolVar(&c.NoJom, "no-jom", false, "Do not use jom (MSVC)")
	f.BoolVar(&c.BuildTests, "build-tests", false, "Build tests")
	f.BoolVar(&c.UseXvfb, "use-xvfb", false, "Use Xvfb for testing")
	f.BoolVar(&c.ReuseBuild, "reuse-build", false, "Reuse existing build")
	f.StringVar(&c.CompilerLauncher, "compiler-launcher", "", "Use a compiler launcher like ccache or sccache for builds")
	f.BoolVar(&c.SkipCMake, "skip-cmake", false, "Skip CMake step")
	f.BoolVar(&c.SkipMakeInstall, "skip-make-install", false, "Skip install step")
	f.BoolVar(&c.SkipPackaging, "skip-packaging", false, "Skip packaging step")
	f.BoolVar(&c.VerboseBuild, "verbose-build", false, "Verbose build")
	f.BoolVar(&c.SanitizeAddress, "sanitize-address", false, "Build with address sanitizer")
	f.BoolVar(&c.ShorterPaths, "shorter-paths", false, "Use shorter paths")
	f.BoolVar(&c.DocBuildOnline, "doc-build-online", false, "Build online documentation")
	f.StringVar(&c.QtPaths, "qtpaths", "", "Path to qtpaths")
	f.StringVar(&c.QMake, "qmake", "", "Path to qmake (deprecated, use --qtpaths)")
	f.StringVar(&c.QtVersion, "qt", "", "Qt version")
	f.StringVar(&c.CMake, "cmake", "", "Path to CMake")
	f.StringVar(&c.OpenSSL, "openssl", "", "Path to OpenSSL libraries")
	f.StringVar(&c.ShibokenConfigDir, "shiboken-config-dir", "", "shiboken configuration directory")
	f.StringVar(&c.MakeSpec, "make-spec", "", "Qt make-spec")
	f.StringVar(&c.MacOSArch, "macos-arch", "", "macOS architecture")
	f.StringVar(&c.MacOSSysroot, "macos-sysroot", "", "macOS sysroot")
	f.StringVar(&c.MacOSDeploymentTarget, "macos-deployment-target", "", "macOS deployment target")
	f.StringVar(&c.SkipModules, "skip-modules", "", "Qt modules to be skipped")
	f.StringVar(&c.ModuleSubset, "module-subset", "", "Qt modules to be built")
	f.StringVar(&c.RPath, "rpath", "", "RPATH")
	f.StringVar(&c.QtConfPrefix, "qt-conf-prefix", "", "Qt configuration prefix")
	f.StringVar(&c.QtSrcDir, "qt-src-dir", "", "Qt source directory")
	f.BoolVar(&c.NoQtTools, "no-qt-tools", false, "Do not copy the Qt tools")
	f.BoolVar(&c.NumpySupport, "pyside-numpy-support", false, "libpyside: Add (experimental) numpy support")

	f.StringVar(&opts.Output, "output", "auto", "Output format: text, json or auto")
}

func markDeclarative(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[declarative.AnnotationEnabled] = "true"
}
