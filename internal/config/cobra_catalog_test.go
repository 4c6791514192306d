package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestCobraCatalogCapturesCommandsAndFlags(t *testing.T) {
	root := &cobra.Command{Use: "bindbuild"}
	root.PersistentFlags().Bool("quiet", false, "quiet")
	root.PersistentFlags().String("config", "", "config file")

	build := &cobra.Command{Use: "build"}
	build.Flags().String("make-spec", "", "make-spec")
	build.Flags().Bool("skip-docs", false, "skip docs")
	build.Flags().String("internal", "", "internal")
	_ = build.Flags().MarkHidden("internal")

	hidden := &cobra.Command{Use: "develop", Hidden: true}
	root.AddCommand(build, hidden)

	catalog := NewCobraCatalog(root)

	commands := catalog.Commands()
	if len(commands) != 2 || commands[0] != "bindbuild" || commands[1] != "bindbuild build" {
		t.Fatalf("unexpected commands %#v", commands)
	}
	if catalog.IsCommandSupported("bindbuild develop") {
		t.Fatalf("expected hidden command to be skipped")
	}
	if ft, ok := catalog.FlagType("bindbuild build", "skip-docs"); !ok || ft != FlagTypeBool {
		t.Fatalf("skip-docs: ok=%t type=%v", ok, ft)
	}
	if ft, ok := catalog.FlagType("bindbuild build", "make-spec"); !ok || ft != FlagTypeString {
		t.Fatalf("make-spec: ok=%t type=%v", ok, ft)
	}
	if ft, ok := catalog.FlagType("bindbuild build", "quiet"); !ok || ft != FlagTypeBool {
		t.Fatalf("expected inherited quiet flag, ok=%t type=%v", ok, ft)
	}
	if _, ok := catalog.FlagType("bindbuild build", "internal"); ok {
		t.Fatalf("expected hidden flag to be skipped")
	}
	if _, ok := catalog.FlagType("bindbuild missing", "quiet"); ok {
		t.Fatalf("expected unknown command lookup to fail")
	}
	if ft, ok := catalog.AnyFlagType("config"); !ok || ft != FlagTypeString {
		t.Fatalf("config: ok=%t type=%v", ok, ft)
	}
}
