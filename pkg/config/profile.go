package config

// ValueSource identifies which declarative layer supplied a flag value.
type ValueSource string

const (
	// ValueSourceDefault marks values from the file's top-level defaults.
	ValueSourceDefault ValueSource = "default"
	// ValueSourceProfile marks values from a named profile such as "debug-asan".
	ValueSourceProfile ValueSource = "profile"
	// ValueSourceCommand marks values from the section of one command path.
	ValueSourceCommand ValueSource = "command"
	// ValueSourceRuntime marks values given on the command line.
	ValueSourceRuntime ValueSource = "runtime"
)

// FlagValue is a typed flag value and the layer it came from.
type FlagValue struct {
	Value  any
	Source ValueSource
}

// FlagSet maps flag names to values.
type FlagSet map[string]FlagValue

// Clone copies the set so later mutations do not leak into the original.
func (f FlagSet) Clone() FlagSet {
	out := make(FlagSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// CommandSection configures one command path, e.g. "bindbuild build".
type CommandSection struct {
	Profiles []string
	Flags    FlagSet
	Disabled bool
}

// BuildProfile is a parsed declarative build configuration file.
type BuildProfile struct {
	Name        string
	Description string
	Defaults    FlagSet
	Profiles    map[string]FlagSet
	Commands    map[string]CommandSection
	SourcePath  string
}

// ResolvedInvocation is the effective flag set for one command after layering.
type ResolvedInvocation struct {
	CommandPath string
	Profiles    []string
	Flags       FlagSet
	Overrides   []string
	Warnings    []string
	SourcePath  string
}
