package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapec-dev/shapec/internal/cli/ui"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// NewServicesCommand creates the services command
func NewServicesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services found in the data directory",
		Long: `List every service directory under data_dir together with the API
version chosen and the optional documents (paginators, waiters, resources)
it provides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := schema.Discover(env.Config.DataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprint(out, ui.Warning(fmt.Sprintf("no services found in %s", env.Config.DataDir), env.NoColor))
				return nil
			}

			table := ui.NewTable(out, env.NoColor, "SERVICE", "VERSION", "PAGINATORS", "WAITERS", "RESOURCES")
			for _, d := range dirs {
				version := d.Version
				if version == "" {
					version = "-"
				}
				table.AddRow(d.Name, version, ui.Check(d.HasPaginators), ui.Check(d.HasWaiters), ui.Check(d.HasResources))
			}
			table.Render()
			return nil
		},
	}
}
