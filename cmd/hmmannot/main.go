// Package main provides the hmmannot command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Shared state set up before any command runs.
var (
	logger  = zap.NewNop()
	runID   string
	verbose bool
	strict  bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by bad command-line input.
type usageError struct{ error }

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hmmannot",
		Short: "Masterfile annotation toolkit",
		Long: `hmmannot reads, normalizes and writes masterfiles: DNA sequences interleaved
with ;G-name ==> start / end annotation lines.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")
	cmd.PersistentFlags().BoolVar(&strict, "strict", false, "Reject IUPAC ambiguity codes in sequence lines")

	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newFormatCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newFeaturesCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads ~/.hmmannot.yaml and HMMANNOT_* environment variables.
func initConfig() {
	viper.SetDefault("parse.allow_ambiguity", true)
	viper.SetDefault("workdir", "")
	viper.SetDefault("workers", 0)
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("store.path", filepath.Join(home, ".hmmannot", "index.duckdb"))
		viper.AddConfigPath(home)
	}

	viper.SetConfigName(".hmmannot")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("HMMANNOT")
	viper.AutomaticEnv()

	// A missing config file is fine.
	_ = viper.ReadInConfig()
}

func initLogger() error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	runID = uuid.NewString()
	logger = l.With(zap.String("run_id", runID))
	return nil
}

// parseOptions returns the masterfile parser options from configuration.
func parseOptions() []masterfile.Option {
	allow := viper.GetBool("parse.allow_ambiguity") && !strict
	return []masterfile.Option{
		masterfile.WithAmbiguity(allow),
		masterfile.WithLogger(logger),
	}
}

// workers returns the configured worker count, defaulting to one per CPU.
func workers() int {
	if n := viper.GetInt("workers"); n > 0 {
		return n
	}
	return runtime.NumCPU()
}
