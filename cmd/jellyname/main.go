package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellyname/internal/config"
	"github.com/Nomadcxx/jellyname/internal/database"
	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/service"
	"github.com/Nomadcxx/jellyname/internal/ui"
)

var version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"

// app carries what every command needs once flags are parsed.
type app struct {
	cfgFile string
	verbose bool
	jsonOut bool

	cfg    *config.Config
	logger *logging.Logger
	naming *service.NamingService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jellyname",
		Short: "Canonical media file and folder names",
		Long: `jellyname parses, validates and builds canonical movie, episode and
title folder names, classifies releases into encoder tiers and keeps each
folder's [ResolutionSource] label in step with the files inside it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return a.logger.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/jellyname/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newClassifyCmd(a))
	rootCmd.AddCommand(newRankCmd(a))
	rootCmd.AddCommand(newSuggestCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newAuditCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newRejectedCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFrom(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lc := a.cfg.LoggerConfig()
	lc.Console = cmd.ErrOrStderr()
	if a.verbose {
		lc.Level = logging.LevelDebug
	}
	a.logger, err = logging.New(lc)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	ranking, err := a.cfg.TierRanking()
	if err != nil {
		return err
	}
	a.naming, err = service.New(a.cfg.Keywords, ranking)
	return err
}

func (a *app) printer(cmd *cobra.Command) *ui.Printer {
	return ui.New(cmd.OutOrStdout())
}

func (a *app) openDB() (*database.DB, error) {
	path, err := a.cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("unable to get database path: %w", err)
	}
	return database.OpenPath(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jellyname %s\n", version)
		},
	}
}
