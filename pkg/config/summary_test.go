package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/dobrovols/bindbuild/pkg/options"
)

func sampleConfig() *Config {
	return New(
		options.Settings{BuildType: "Release", Jobs: "-j8"},
		CommandOptions{
			Debug:        true,
			CMake:        "/usr/bin/cmake",
			QtPaths:      "/opt/qt/bin/qtpaths",
			MakeSpec:     "ninja",
			ModuleSubset: "Core,Gui",
			QtVersion:    DefaultQtVersion,
		},
		false,
		"linux",
	)
}

func TestFormatSummaryText(t *testing.T) {
	out, err := FormatSummary(sampleConfig(), []string{"--quiet"}, SummaryFormatText)
	if err != nil {
		t.Fatalf("text summary error: %v", err)
	}
	for _, want := range []string{"Build configuration (linux)", "MAKESPEC", "ninja", "MODULE_SUBSET", "Core,Gui", unsetPlaceholder, "--quiet"} {
		if !strings.Contains(strings.ToLower(out), strings.ToLower(want)) {
			t.Fatalf("text summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSummaryRejectsUnknownFormat(t *testing.T) {
	if _, err := FormatSummary(sampleConfig(), nil, "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := FormatSummary(nil, nil, SummaryFormatJSON); err == nil {
		t.Fatalf("expected error for nil configuration")
	}
}

func TestFormatSummaryJSONMatchesSchema(t *testing.T) {
	schema := loadSummarySchema(t)

	out, err := FormatSummary(sampleConfig(), nil, SummaryFormatJSON)
	if err != nil {
		t.Fatalf("json summary error: %v", err)
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if err := schema.Validate(inst); err != nil {
		t.Fatalf("summary does not match schema: %v\n%s", err, out)
	}

	bad := New(options.Settings{Jobs: "8"}, CommandOptions{MakeSpec: "bogus"}, false, "linux")
	out, err = FormatSummary(bad, nil, SummaryFormatJSON)
	if err != nil {
		t.Fatalf("json summary error: %v", err)
	}
	inst, err = jsonschema.UnmarshalJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if err := schema.Validate(inst); err == nil {
		t.Fatalf("expected unnormalized jobs and unknown make-spec to violate the schema")
	}
}

func loadSummarySchema(t *testing.T) *jsonschema.Schema {
	t.Helper()

	fh, err := os.Open(filepath.Join("testdata", "summary.schema.json"))
	if err != nil {
		t.Fatalf("open schema: %v", err)
	}
	defer fh.Close()
	doc, err := jsonschema.UnmarshalJSON(fh)
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("summary.schema.json", doc); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile("summary.schema.json")
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}
