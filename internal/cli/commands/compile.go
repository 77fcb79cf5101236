package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/cli/ui"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/pipeline"
	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
	"github.com/shapec-dev/shapec/internal/metrics"
	"github.com/shapec-dev/shapec/internal/store"
)

// compileReport is the --json form of one service result.
type compileReport struct {
	Service     string           `json:"service"`
	Hash        string           `json:"hash,omitempty"`
	Cached      bool             `json:"cached"`
	Output      string           `json:"output,omitempty"`
	RunID       string           `json:"run_id,omitempty"`
	Records     int              `json:"records"`
	Literals    int              `json:"literals"`
	Methods     int              `json:"methods"`
	Warnings    int              `json:"warnings"`
	Diagnostics errors.ErrorList `json:"diagnostics"`
	Error       string           `json:"error,omitempty"`
}

// NewCompileCommand creates the compile command
func NewCompileCommand(env *Env) *cobra.Command {
	var (
		jsonOutput    bool
		failOnWarning bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "compile [service...]",
		Short: "Compile services into snapshot files",
		Long: `Compile every service under data_dir, or only the named ones, in parallel.

Each successful service is written to <output_dir>/<service>.json and
recorded in the snapshot store. Unchanged inputs are served from the cache.`,
		Example: `  # Compile everything
  shapec compile

  # Compile two services and emit diagnostics as JSON
  shapec compile --json ec2 s3

  # Treat warnings as failures
  shapec compile --fail-on-warning`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dirs, err := env.SelectServices(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no services found in %s", env.Config.DataDir)
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
			if st != nil {
				defer st.Close()
			}

			start := time.Now()
			results := compiler.CompileAll(ctx, dirs)

			reports := make([]compileReport, len(results))
			for i, r := range results {
				reports[i] = env.finish(ctx, st, r)
			}

			if jsonOutput {
				if err := writeReports(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				env.printResults(cmd.OutOrStdout(), results, reports, verbose)
			}

			failed, warnings := 0, 0
			for _, r := range reports {
				if r.Error != "" {
					failed++
				}
				warnings += r.Warnings
			}
			if !jsonOutput && failed == 0 {
				ui.WriteSuccess(cmd.OutOrStdout(),
					fmt.Sprintf("compiled %d service(s) in %s", len(results), time.Since(start).Round(time.Millisecond)),
					env.NoColor)
			}
			if failed > 0 {
				return &ExitError{Code: 1}
			}
			if failOnWarning && warnings > 0 {
				return &ExitError{Code: 2}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().BoolVar(&failOnWarning, "fail-on-warning", false, "Exit non-zero when any service has warnings")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also show info diagnostics (renames, overrides)")

	return cmd
}

// finish writes the snapshot of a successful result and records it in st.
// Failures are folded into the returned report.
func (e *Env) finish(ctx context.Context, st *store.SnapshotStore, r *pipeline.Result) compileReport {
	report := compileReport{
		Service:     r.Service,
		Hash:        r.Hash,
		Cached:      r.CacheHit,
		Warnings:    r.Warnings(),
		Diagnostics: r.Diagnostics,
	}
	if report.Diagnostics == nil {
		report.Diagnostics = errors.ErrorList{}
	}
	if r.Err != nil {
		report.Error = r.Err.Error()
		return report
	}

	snap := r.Snapshot
	report.Records = len(snap.Records)
	report.Literals = len(snap.Literals)
	report.Methods = snap.MethodCount()

	report.Output = filepath.Join(e.Config.OutputDir, r.Service+".json")
	if err := snapshot.WriteToFile(snap, report.Output); err != nil {
		report.Error = err.Error()
		return report
	}

	if st != nil {
		run := store.NewRun(snap)
		if err := st.Save(ctx, run); err != nil {
			e.Log.Warn("failed to record snapshot", zap.String("service", r.Service), zap.Error(err))
		} else {
			report.RunID = run.ID
		}
	}
	return report
}

func writeReports(w io.Writer, reports []compileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func (e *Env) printResults(w io.Writer, results []*pipeline.Result, reports []compileReport, verbose bool) {
	for i, r := range results {
		rep := reports[i]
		ui.WriteDiagnostics(w, r.Diagnostics, verbose, e.NoColor)
		if rep.Error != "" {
			msg := rep.Error
			if list, ok := pipeline.FatalDiagnostics(r.Err); ok {
				msg = fmt.Sprintf("%d fatal diagnostic(s)", len(list.BySeverity(errors.SeverityError)))
			}
			fmt.Fprint(w, ui.CompileError(r.Service, msg, e.NoColor))
			continue
		}
		note := ""
		if rep.Cached {
			note = " (cached)"
		}
		fmt.Fprintf(w, "%s: %d records, %d literals, %d methods, %d warnings -> %s%s\n",
			r.Service, rep.Records, rep.Literals, rep.Methods, rep.Warnings, rep.Output, note)
	}
}
