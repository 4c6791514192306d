package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	pkgconfig "github.com/dobrovols/bindbuild/pkg/config"
)

var (
	// ErrUnknownCommand indicates the file references a command the CLI does not have.
	ErrUnknownCommand = errors.New("unknown command referenced in build profile")
	// ErrUnknownFlag indicates the file references a flag no command accepts.
	ErrUnknownFlag = errors.New("unknown flag referenced in build profile")
	// ErrInvalidFlagType indicates a YAML value cannot be coerced to the flag's type.
	ErrInvalidFlagType = errors.New("invalid flag value type")
)

// Loader parses build profile files against a flag catalog.
type Loader struct {
	catalog FlagCatalog
}

// NewLoader constructs a Loader with the provided flag catalog.
func NewLoader(catalog FlagCatalog) *Loader {
	return &Loader{catalog: catalog}
}

// Load parses the YAML file at path.
func (l *Loader) Load(path string) (*pkgconfig.BuildProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build profile %q: %w", path, err)
	}

	var raw rawProfile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse build profile %q: %w", path, err)
	}

	profile := &pkgconfig.BuildProfile{
		Name:        raw.Metadata.Name,
		Description: raw.Metadata.Description,
		Defaults:    pkgconfig.FlagSet{},
		Profiles:    map[string]pkgconfig.FlagSet{},
		Commands:    map[string]pkgconfig.CommandSection{},
		SourcePath:  path,
	}

	if profile.Defaults, err = l.buildFlagSet(raw.Defaults, "", pkgconfig.ValueSourceDefault); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	for name, entries := range raw.Profiles {
		set, err := l.buildFlagSet(entries, "", pkgconfig.ValueSourceProfile)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		profile.Profiles[name] = set
	}

	for command, section := range raw.Commands {
		cmdPath := strings.Join(strings.Fields(command), " ")
		if cmdPath == "" {
			continue
		}
		if !l.catalog.IsCommandSupported(cmdPath) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmdPath)
		}
		set, err := l.buildFlagSet(section.Flags, cmdPath, pkgconfig.ValueSourceCommand)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", cmdPath, err)
		}
		profile.Commands[cmdPath] = pkgconfig.CommandSection{
			Profiles: append([]string(nil), section.Profiles...),
			Flags:    set,
			Disabled: section.Disabled,
		}
	}

	return profile, nil
}

type rawProfile struct {
	Metadata rawMetadata                  `yaml:"metadata"`
	Defaults map[string]any               `yaml:"defaults"`
	Profiles map[string]map[string]any    `yaml:"profiles"`
	Commands map[string]rawCommandSection `yaml:"commands"`
}

type rawMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type rawCommandSection struct {
	Profiles []string       `yaml:"profiles"`
	Flags    map[string]any `yaml:"flags"`
	Disabled bool           `yaml:"disabled"`
}

// FlagName normalizes a profile key (makeSpec, make_spec, make-spec) to its flag name.
func FlagName(key string) string {
	return strcase.ToKebab(strings.TrimSpace(key))
}

func (l *Loader) buildFlagSet(entries map[string]any, command string, source pkgconfig.ValueSource) (pkgconfig.FlagSet, error) {
	set := pkgconfig.FlagSet{}
	for key, raw := range entries {
		name := FlagName(key)

		var (
			flagType FlagType
			ok       bool
		)
		if command != "" {
			flagType, ok = l.catalog.FlagType(command, name)
		} else {
			flagType, ok = l.catalog.AnyFlagType(name)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFlag, key)
		}

		value, err := coerceValue(name, raw, flagType)
		if err != nil {
			return nil, err
		}
		set[name] = pkgconfig.FlagValue{Value: value, Source: source}
	}
	return set, nil
}

func coerceValue(name string, raw any, flagType FlagType) (any, error) {
	switch flagType {
	case FlagTypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			value, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %s expects boolean", ErrInvalidFlagType, name)
			}
			return value, nil
		default:
			return nil, fmt.Errorf("%w: %s expects boolean", ErrInvalidFlagType, name)
		}
	default:
		switch v := raw.(type) {
		case string:
			return v, nil
		case int, int64, float64:
			return fmt.Sprint(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		case []any:
			// Lists such as module-subset or rpath are joined the way the flags expect them.
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			sep := ","
			if name == "rpath" {
				sep = ":"
			}
			return strings.Join(parts, sep), nil
		default:
			return nil, fmt.Errorf("%w: %s expects string-compatible value", ErrInvalidFlagType, name)
		}
	}
}
