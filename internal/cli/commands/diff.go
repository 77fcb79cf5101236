package commands

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapec-dev/shapec/internal/cli/ui"
	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
	"github.com/shapec-dev/shapec/internal/metrics"
	"github.com/shapec-dev/shapec/internal/store"
)

// NewDiffCommand creates the diff command
func NewDiffCommand(env *Env) *cobra.Command {
	var (
		exitCode   bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "diff <service>",
		Short: "Compare a fresh compile against the latest stored snapshot",
		Long: `Compile a service and list the records, literals and methods that were
added, removed or changed since the snapshot last recorded by 'shapec compile'.
Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !env.Config.Store.Enabled {
				return fmt.Errorf("diff needs the snapshot store; set store.enabled")
			}

			dirs, err := env.SelectServices(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}

			compiler, cleanup, err := env.Compiler(metrics.New())
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := env.Store(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			result := compiler.Compile(ctx, dirs[0])
			if result.Err != nil {
				ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, false, env.NoColor)
				return fmt.Errorf("failed to compile %s: %w", result.Service, result.Err)
			}

			var base *snapshot.Snapshot
			run, err := st.Latest(ctx, result.Service)
			switch {
			case err == nil:
				base = run.Snapshot
			case stderrors.Is(err, store.ErrNotFound):
				fmt.Fprint(cmd.ErrOrStderr(), ui.Info(fmt.Sprintf("no stored snapshot for %s; everything is new", result.Service), env.NoColor))
			default:
				return err
			}

			changes := snapshot.Diff(base, result.Snapshot)
			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := snapshot.MarshalChanges(changes)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				ui.WriteChanges(out, changes, env.NoColor)
			}

			if exitCode && len(changes) > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 1 when there are changes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output changes in JSON format")

	return cmd
}
