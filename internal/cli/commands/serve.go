package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/metrics"
	"github.com/shapec-dev/shapec/internal/server"
	"github.com/shapec-dev/shapec/internal/watch"
)

// NewServeCommand creates the serve command
func NewServeCommand(env *Env) *cobra.Command {
	var (
		addr     string
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compiled snapshots over HTTP",
		Long: `Compile every service and serve the results over a read-only HTTP API:

  GET /healthz
  GET /services
  GET /services/{service}
  GET /services/{service}/records/{record}
  GET /services/{service}/diff
  GET /metrics
  GET /ws

With --watch, changes under data_dir (and to the overrides file) recompile
the affected services and are announced to websocket clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			compiler, cleanup, err := env.Compiler(m)
			if err != nil {
				return err
			}
			defer func() { cleanup() }()

			cfg := server.DefaultConfig()
			cfg.Address = env.Config.Server.Addr
			if addr != "" {
				cfg.Address = addr
			}
			cfg.DataDir = env.Config.DataDir
			cfg.Compiler = compiler
			cfg.Metrics = m
			cfg.Logger = env.Log

			st, err := env.Store(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
				cfg.History = st
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			if _, err := srv.Rebuild(ctx, nil); err != nil {
				return err
			}

			if watching {
				var extra []string
				if env.Config.OverridesFile != "" {
					extra = append(extra, env.Config.OverridesFile)
				}
				rebuild := srv.OnChange(ctx)
				onChange := func(files []string) error {
					if !touches(files, env.Config.OverridesFile) {
						return rebuild(files)
					}
					// Override tables changed: every service is affected.
					next, nextCleanup, err := env.Compiler(m)
					if err != nil {
						return err
					}
					srv.SetCompiler(next)
					cleanup()
					cleanup = nextCleanup
					_, err = srv.Rebuild(ctx, nil)
					return err
				}

				fw, err := watch.NewFileWatcher(env.Config.DataDir, extra, watch.DefaultDelay, env.Log, onChange)
				if err != nil {
					return err
				}
				if err := fw.Start(); err != nil {
					return err
				}
				defer fw.Stop()
				env.Log.Info("watching for changes", zap.String("data_dir", env.Config.DataDir))
			}

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	cmd.Flags().BoolVar(&watching, "watch", false, "Recompile when service documents change")

	return cmd
}

func touches(files []string, path string) bool {
	if path == "" {
		return false
	}
	want, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil && abs == want {
			return true
		}
	}
	return false
}

