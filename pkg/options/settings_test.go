package options_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dobrovols/bindbuild/pkg/options"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

func TestResolveJobsFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "count", args: []string{"--parallel=4"}, want: "-j4"},
		{name: "already prefixed", args: []string{"--parallel=-j8"}, want: "-j8"},
		{name: "short option", args: []string{"-j", "3"}, want: "-j3"},
		{name: "absent", args: nil, want: ""},
		{name: "environment", env: map[string]string{"PARALLEL": "12"}, want: "-j12"},
		{name: "deprecated jobs", args: []string{"--jobs=2"}, want: "-j2"},
		{name: "deprecated jobs overrides parallel", args: []string{"--parallel=4", "--jobs", "2"}, want: "-j2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings, _, err := options.Resolve(tc.args, envOf(tc.env), nil)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if settings.Jobs != tc.want {
				t.Fatalf("Jobs = %q, want %q", settings.Jobs, tc.want)
			}
		})
	}
}

func TestResolveDeprecatedJobsWarnsOnce(t *testing.T) {
	rec := &telemetry.Recorder{}
	settings, _, err := options.Resolve([]string{"build", "--jobs=2"}, noEnv, rec)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if settings.Jobs != "-j2" {
		t.Fatalf("Jobs = %q", settings.Jobs)
	}

	warnings := 0
	for _, e := range rec.Entries() {
		if e.Option == "--jobs" && strings.Contains(e.Message, "deprecated") {
			warnings++
			if e.Metadata["replacement"] != "--parallel" {
				t.Fatalf("expected replacement metadata, got %#v", e.Metadata)
			}
		}
	}
	if warnings != 1 {
		t.Fatalf("expected exactly one deprecation warning, got %d", warnings)
	}
}

func TestResolveLeavesResidualForCommands(t *testing.T) {
	args := []string{
		"install",
		"--quiet",
		"--build-type=Release",
		"--prefix", "/opt/bindings",
		"--skip-docs",
		"--snapshot-build",
		"--macos-use-libc++",
		"--limited-api=yes",
		"--jom",
	}
	original := append([]string(nil), args...)

	settings, residual, err := options.Resolve(args, noEnv, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{"install", "--quiet", "--prefix", "/opt/bindings", "--skip-docs"}
	if !reflect.DeepEqual(residual, want) {
		t.Fatalf("residual = %#v, want %#v", residual, want)
	}
	if !reflect.DeepEqual(args, original) {
		t.Fatalf("input slice was mutated: %#v", args)
	}

	if settings.BuildType != "Release" || !settings.Quiet || settings.FinalInstallPrefix != "/opt/bindings" {
		t.Fatalf("unexpected settings %#v", settings)
	}
	if !settings.SnapshotBuild || !settings.MacOSUseLibcpp || !settings.Jom || settings.LimitedAPI != "yes" {
		t.Fatalf("unexpected settings %#v", settings)
	}
	if v := settings.Store["internal-build-type"]; v.Present || v.Origin != options.OriginUnset {
		t.Fatalf("expected absent internal-build-type recorded, got %#v", v)
	}
}

func TestResolveMissingValueAborts(t *testing.T) {
	_, residual, err := options.Resolve([]string{"build", "--limited-api"}, noEnv, nil)
	if !errors.Is(err, options.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	if residual != nil {
		t.Fatalf("expected no residual on error, got %#v", residual)
	}
}

func TestNormalizeJobs(t *testing.T) {
	cases := map[string]string{"": "", "4": "-j4", "-j8": "-j8"}
	for in, want := range cases {
		if got := options.NormalizeJobs(in); got != want {
			t.Fatalf("NormalizeJobs(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValueOfDeprecatedRejectsCurrentNames(t *testing.T) {
	r := options.NewResolver(nil, noEnv, nil)
	if _, _, err := r.ValueOfDeprecated("parallel"); err == nil {
		t.Fatalf("expected error for a name without a deprecation entry")
	}
	if replacement, ok := options.Replacement("qmake"); !ok || replacement != "qtpaths" {
		t.Fatalf("Replacement(qmake) = (%q, %t)", replacement, ok)
	}
}
