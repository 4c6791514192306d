package config

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotDeclared indicates the command has no section in the build profile.
	ErrCommandNotDeclared = errors.New("command not declared in build profile")
	// ErrCommandDisabled indicates the command section is marked disabled.
	ErrCommandDisabled = errors.New("command disabled in build profile")
	// ErrUnknownProfile indicates a command references an undefined named profile.
	ErrUnknownProfile = errors.New("profile not defined in build profile")
)

// ResolveInvocation layers file defaults, the command's named profiles, the command section and
// the runtime flags, in that order. Each later layer overrides earlier ones and every override is
// recorded on the result.
func ResolveInvocation(profile *BuildProfile, commandPath string, runtime FlagSet) (*ResolvedInvocation, error) {
	if profile == nil {
		return nil, ErrCommandNotDeclared
	}

	section, declared := profile.Commands[commandPath]
	if !declared && len(profile.Defaults) == 0 {
		return nil, ErrCommandNotDeclared
	}
	if section.Disabled {
		return nil, ErrCommandDisabled
	}

	resolved := &ResolvedInvocation{
		CommandPath: commandPath,
		Flags:       FlagSet{},
		SourcePath:  profile.SourcePath,
	}
	if len(section.Profiles) > 0 {
		resolved.Profiles = append([]string(nil), section.Profiles...)
	}

	layer := func(label string, set FlagSet, fallback ValueSource) {
		for name, value := range set {
			if value.Source == "" {
				value.Source = fallback
			}
			if previous, ok := resolved.Flags[name]; ok {
				resolved.Overrides = append(resolved.Overrides, fmt.Sprintf("%s overrides %s (was %s)", label, name, previous.Source))
			}
			resolved.Flags[name] = value
		}
	}

	layer("defaults", profile.Defaults, ValueSourceDefault)

	for _, name := range section.Profiles {
		set, ok := profile.Profiles[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
		}
		layer("profile "+name, set, ValueSourceProfile)
	}

	layer("command "+commandPath, section.Flags, ValueSourceCommand)

	if len(runtime) > 0 {
		set := runtime.Clone()
		for name, v := range set {
			v.Source = ValueSourceRuntime
			set[name] = v
		}
		layer("runtime", set, ValueSourceRuntime)
	}

	return resolved, nil
}
