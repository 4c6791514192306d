package cli

import (
	"github.com/spf13/cobra"

	buildcmd "github.com/dobrovols/bindbuild/cmd/bindbuild/build"
	"github.com/dobrovols/bindbuild/cmd/bindbuild/declarative"
)

// NewRootCommand constructs the root bindbuild command. --quiet and --prefix are read by the
// startup option scan before Cobra runs; they are declared here so the residual arguments parse.
func NewRootCommand(rt *buildcmd.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bindbuild",
		Short:         "bindbuild resolves build options and drives the bindings build",
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("quiet", false, "Suppress informational log entries")
	cmd.PersistentFlags().String("prefix", "", "Final installation prefix")

	cmd.AddCommand(buildcmd.NewBuildCommand(rt))
	cmd.AddCommand(buildcmd.NewInstallCommand(rt))
	cmd.AddCommand(buildcmd.NewOptionsCommand(rt))

	declarative.NewManager(cmd).Bind(cmd)
	return cmd
}
