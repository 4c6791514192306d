package cli_test

import (
	"testing"

	buildcmd "github.com/dobrovols/bindbuild/cmd/bindbuild/build"
	"github.com/dobrovols/bindbuild/internal/cli"
)

func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	cmd := cli.NewRootCommand(&buildcmd.Runtime{})
	if cmd.Use != "bindbuild" {
		t.Fatalf("expected use bindbuild, got %s", cmd.Use)
	}
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"build", "install", "options"} {
		if !names[expected] {
			t.Fatalf("expected subcommand %s to be registered", expected)
		}
	}
}

func TestNewRootCommandDeclaresStartupFlags(t *testing.T) {
	cmd := cli.NewRootCommand(&buildcmd.Runtime{})
	for _, name := range []string{"quiet", "prefix"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("expected persistent flag %s", name)
		}
	}
}

func TestNewRootCommandBindsProfiles(t *testing.T) {
	cmd := cli.NewRootCommand(&buildcmd.Runtime{})
	for _, sub := range cmd.Commands() {
		if sub.Flags().Lookup("config") == nil {
			t.Fatalf("expected --config on %s", sub.Name())
		}
		if sub.PreRunE == nil {
			t.Fatalf("expected profile loading hook on %s", sub.Name())
		}
	}
}
