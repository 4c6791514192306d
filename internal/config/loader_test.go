package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	internalconfig "github.com/dobrovols/bindbuild/internal/config"
	pkgconfig "github.com/dobrovols/bindbuild/pkg/config"
)

func buildCatalog() fakeCatalog {
	return fakeCatalog{
		commands: map[string]map[string]internalconfig.FlagType{
			"bindbuild build": {
				"make-spec":     internalconfig.FlagTypeString,
				"module-subset": internalconfig.FlagTypeString,
				"debug":         internalconfig.FlagTypeBool,
				"skip-docs":     internalconfig.FlagTypeBool,
				"rpath":         internalconfig.FlagTypeString,
				"qt-version":    internalconfig.FlagTypeString,
			},
			"bindbuild install": {
				"make-spec": internalconfig.FlagTypeString,
				"debug":     internalconfig.FlagTypeBool,
			},
		},
	}
}

func TestLoadProfileParsesYAMLDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindbuild.yaml")
	writeConfigFile(t, path, `
metadata:
  name: ci
  description: Nightly bindings
defaults:
  makeSpec: ninja
profiles:
  debug:
    debug: "true"
    module_subset: [Core, Gui]
commands:
  bindbuild  build:
    profiles:
      - debug
    flags:
      skip-docs: true
      rpath: [/opt/qt/lib, /usr/local/lib]
      qt-version: 6
`)

	profile, err := internalconfig.NewLoader(buildCatalog()).Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if profile.SourcePath != path || profile.Name != "ci" {
		t.Fatalf("unexpected metadata %#v", profile)
	}
	if profile.Defaults["make-spec"].Value != "ninja" {
		t.Fatalf("expected camelCase key to normalize, got %#v", profile.Defaults)
	}
	debug := profile.Profiles["debug"]
	if debug["debug"].Value != true {
		t.Fatalf("expected quoted boolean to coerce, got %#v", debug["debug"].Value)
	}
	if debug["module-subset"].Value != "Core,Gui" {
		t.Fatalf("module-subset = %v", debug["module-subset"].Value)
	}

	build, ok := profile.Commands["bindbuild build"]
	if !ok {
		t.Fatalf("expected whitespace-normalized command path, got %#v", profile.Commands)
	}
	if len(build.Profiles) != 1 || build.Profiles[0] != "debug" {
		t.Fatalf("unexpected profile refs %#v", build.Profiles)
	}
	if build.Flags["rpath"].Value != "/opt/qt/lib:/usr/local/lib" {
		t.Fatalf("rpath = %v", build.Flags["rpath"].Value)
	}
	if build.Flags["qt-version"].Value != "6" {
		t.Fatalf("qt-version = %v", build.Flags["qt-version"].Value)
	}
	if build.Flags["skip-docs"].Source != pkgconfig.ValueSourceCommand {
		t.Fatalf("source = %s", build.Flags["skip-docs"].Source)
	}
}

func TestLoadProfileRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "unknown command",
			body: "commands:\n  bindbuild develop:\n    flags:\n      debug: true\n",
			want: internalconfig.ErrUnknownCommand,
		},
		{
			name: "unknown flag",
			body: "commands:\n  bindbuild install:\n    flags:\n      skip-docs: true\n",
			want: internalconfig.ErrUnknownFlag,
		},
		{
			name: "bad boolean",
			body: "defaults:\n  debug: maybe\n",
			want: internalconfig.ErrInvalidFlagType,
		},
		{
			name: "map for string flag",
			body: "defaults:\n  make-spec:\n    kind: ninja\n",
			want: internalconfig.ErrInvalidFlagType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bindbuild.yaml")
			writeConfigFile(t, path, tc.body)
			_, err := internalconfig.NewLoader(buildCatalog()).Load(path)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadProfileRejectsUnknownTopLevelKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindbuild.yaml")
	writeConfigFile(t, path, "secrets:\n  token: x\n")
	if _, err := internalconfig.NewLoader(buildCatalog()).Load(path); err == nil {
		t.Fatalf("expected strict decoding to reject unknown keys")
	}
}

func TestLoadEmptyProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindbuild.yaml")
	writeConfigFile(t, path, "")
	profile, err := internalconfig.NewLoader(buildCatalog()).Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(profile.Defaults) != 0 || len(profile.Commands) != 0 {
		t.Fatalf("expected empty profile, got %#v", profile)
	}
}

func TestFlagName(t *testing.T) {
	for key, want := range map[string]string{
		"makeSpec":       "make-spec",
		"make_spec":      "make-spec",
		"make-spec":      "make-spec",
		" qtpaths ":      "qtpaths",
		"skipDocs":       "skip-docs",
		"macosArchFlags": "macos-arch-flags",
	} {
		if got := internalconfig.FlagName(key); got != want {
			t.Errorf("FlagName(%q) = %q, want %q", key, got, want)
		}
	}
}

func writeConfigFile(t *testing.T, path string, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

type fakeCatalog struct {
	commands map[string]map[string]internalconfig.FlagType
}

func (c fakeCatalog) IsCommandSupported(command string) bool {
	_, ok := c.commands[command]
	return ok
}

func (c fakeCatalog) FlagType(command, flag string) (internalconfig.FlagType, bool) {
	t, ok := c.commands[command][flag]
	return t, ok
}

func (c fakeCatalog) AnyFlagType(flag string) (internalconfig.FlagType, bool) {
	for _, flags := range c.commands {
		if t, ok := flags[flag]; ok {
			return t, true
		}
	}
	return 0, false
}

func (c fakeCatalog) Commands() []string {
	out := make([]string, 0, len(c.commands))
	for name := range c.commands {
		out = append(out, name)
	}
	return out
}
