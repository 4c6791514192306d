package declarative

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	internalconfig "github.com/dobrovols/bindbuild/internal/config"
	pkgconfig "github.com/dobrovols/bindbuild/pkg/config"
	"github.com/dobrovols/bindbuild/pkg/telemetry"
)

const configFlagName = "config"

// AnnotationEnabled marks commands that read declarative build profiles.
const AnnotationEnabled = "declarative-config"

// Flags resolved by the startup option scan; a profile cannot change them after the fact.
var startupFlags = map[string]struct{}{
	"quiet":  {},
	"prefix": {},
}

// Manager wires build profile discovery and application into annotated commands.
type Manager struct {
	loader *internalconfig.Loader
}

// NewManager constructs a manager for the provided root command.
func NewManager(root *cobra.Command) *Manager {
	return &Manager{loader: internalconfig.NewLoader(internalconfig.NewCobraCatalog(root))}
}

// Bind walks the command tree and attaches profile loading to each annotated command.
func (m *Manager) Bind(root *cobra.Command) {
	walkCommands(root, func(cmd *cobra.Command) {
		if cmd.Annotations == nil || strings.ToLower(cmd.Annotations[AnnotationEnabled]) != "true" {
			return
		}
		if cmd.Flags().Lookup(configFlagName) == nil {
			cmd.Flags().String(configFlagName, "", "Path to a bindbuild.yaml build profile")
		}
		existing := cmd.PreRunE
		cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
			if err := m.apply(cmd); err != nil {
				return err
			}
			if existing != nil {
				return existing(cmd, args)
			}
			return nil
		}
	})
}

func (m *Manager) apply(cmd *cobra.Command) error {
	explicitPath, err := cmd.Flags().GetString(configFlagName)
	if err != nil {
		return fmt.Errorf("read --config flag: %w", err)
	}

	location, err := internalconfig.LocateConfig(explicitPath)
	if err != nil {
		if strings.TrimSpace(explicitPath) == "" && errors.Is(err, internalconfig.ErrConfigNotFound) {
			return nil
		}
		return err
	}

	runtime, err := collectRuntimeOverrides(cmd)
	if err != nil {
		return err
	}

	profile, err := m.loader.Load(location.Path)
	if err != nil {
		return err
	}

	resolved, err := pkgconfig.ResolveInvocation(profile, cmd.CommandPath(), runtime)
	if errors.Is(err, pkgconfig.ErrCommandNotDeclared) {
		// The file configures other commands only.
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", location.Path, err)
	}
	if err := applyResolvedFlags(cmd, resolved); err != nil {
		return err
	}
	storeResolvedInvocation(cmd, resolved)
	return nil
}

func collectRuntimeOverrides(cmd *cobra.Command) (pkgconfig.FlagSet, error) {
	runtime := pkgconfig.FlagSet{}
	var firstErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed || flag.Name == configFlagName || firstErr != nil {
			return
		}
		if _, startup := startupFlags[flag.Name]; startup {
			return
		}
		if flag.Value.Type() == "bool" {
			val, err := cmd.Flags().GetBool(flag.Name)
			if err != nil {
				firstErr = err
				return
			}
			runtime[flag.Name] = pkgconfig.FlagValue{Value: val, Source: pkgconfig.ValueSourceRuntime}
			return
		}
		runtime[flag.Name] = pkgconfig.FlagValue{Value: flag.Value.String(), Source: pkgconfig.ValueSourceRuntime}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if len(runtime) == 0 {
		return nil, nil
	}
	return runtime, nil
}

func applyResolvedFlags(cmd *cobra.Command, resolved *pkgconfig.ResolvedInvocation) error {
	names := make([]string, 0, len(resolved.Flags))
	for name := range resolved.Flags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flagValue := resolved.Flags[name]
		if name == configFlagName || flagValue.Source == pkgconfig.ValueSourceRuntime {
			continue
		}
		if _, startup := startupFlags[name]; startup {
			resolved.Warnings = append(resolved.Warnings, fmt.Sprintf("flag %q ignored (resolved before profiles are read)", name))
			continue
		}
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			resolved.Warnings = append(resolved.Warnings, fmt.Sprintf("flag %q ignored (not recognised by command)", name))
			continue
		}
		value := fmt.Sprint(flagValue.Value)
		if flag.Value.Type() == "bool" {
			boolVal, ok := flagValue.Value.(bool)
			if !ok {
				return fmt.Errorf("%w: %s expects boolean", internalconfig.ErrInvalidFlagType, name)
			}
			value = fmt.Sprintf("%t", boolVal)
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("apply flag %q: %w", name, err)
		}
	}
	return nil
}

func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, child := range cmd.Commands() {
		walkCommands(child, fn)
	}
}

type resolvedContextKey struct{}

func storeResolvedInvocation(cmd *cobra.Command, resolved *pkgconfig.ResolvedInvocation) {
	if cmd == nil || resolved == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, resolvedContextKey{}, resolved))
}

// ResolvedInvocationFromContext retrieves the resolved invocation stored for the command.
func ResolvedInvocationFromContext(cmd *cobra.Command) (*pkgconfig.ResolvedInvocation, bool) {
	if cmd == nil {
		return nil, false
	}
	if ctx := cmd.Context(); ctx != nil {
		if resolved, ok := ctx.Value(resolvedContextKey{}).(*pkgconfig.ResolvedInvocation); ok {
			return resolved, true
		}
	}
	return nil, false
}

// EmitTelemetry logs the resolved profile layering and any ignored keys.
func EmitTelemetry(logger telemetry.StructuredLogger, resolved *pkgconfig.ResolvedInvocation) {
	if logger == nil || resolved == nil {
		return
	}

	metadata := map[string]string{"command": resolved.CommandPath}
	if resolved.SourcePath != "" {
		metadata["sourcePath"] = resolved.SourcePath
	}
	if len(resolved.Profiles) > 0 {
		metadata["profiles"] = strings.Join(resolved.Profiles, ",")
	}
	if len(resolved.Overrides) > 0 {
		metadata["overrides"] = strings.Join(resolved.Overrides, "; ")
	}
	for name, value := range resolved.Flags {
		metadata["flag."+name] = fmt.Sprint(value.Value)
		metadata["flag."+name+".source"] = string(value.Source)
	}

	_ = logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryConfig,
		Message:  "build profile resolved",
		Severity: telemetry.SeverityInfo,
		Metadata: metadata,
	})
	for _, warning := range resolved.Warnings {
		_ = logger.Emit(telemetry.Entry{
			Category: telemetry.CategoryConfig,
			Message:  warning,
			Severity: telemetry.SeverityWarn,
			Metadata: map[string]string{"sourcePath": resolved.SourcePath},
		})
	}
}
