package commands

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/cli/config"
	"github.com/shapec-dev/shapec/internal/cli/ui"
	"github.com/shapec-dev/shapec/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// ExitError carries a process exit code without an error message, e.g. a
// diff that found changes under --exit-code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Env is the state shared by every command: global flags, the loaded
// configuration and the logger. It is filled in before any command runs.
type Env struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool

	Config *config.Config
	Log    *zap.Logger
}

// Load reads the configuration and builds the logger.
func (e *Env) Load() error {
	cfg, err := config.Load(e.ConfigPath)
	if err != nil {
		return err
	}
	if e.LogLevel != "" {
		cfg.Log.Level = e.LogLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	if e.NoColor {
		color.NoColor = true
	}
	e.Config = cfg
	e.Log = log
	return nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	env := &Env{}

	rootCmd := &cobra.Command{
		Use:   "shapec",
		Short: "Compile botocore service shapes into type descriptors",
		Long: color.CyanString(`shapec - service shape compiler

shapec reads botocore-style service documents (service, paginators, waiters
and resources) and compiles them into deterministic type descriptor
snapshots: records, literals, and method signatures for clients, service
resources, waiters and paginators.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return env.Load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "Config file (default: ./shapec.yaml)")
	rootCmd.PersistentFlags().StringVar(&env.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&env.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServicesCommand(env))
	rootCmd.AddCommand(NewCompileCommand(env))
	rootCmd.AddCommand(NewDiffCommand(env))
	rootCmd.AddCommand(NewServeCommand(env))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the shapec version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("shapec version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exit *ExitError
	if stderrors.As(err, &exit) {
		return exit.Code
	}
	color.New(color.FgRed, color.Bold).Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}
