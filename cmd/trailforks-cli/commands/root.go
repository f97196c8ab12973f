package commands

import (
	"context"
	"trailforks-scraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	format     string
	debug      bool
	regionDb   string
)

var rootCmd = &cobra.Command{
	Use:           "trailforks-cli",
	Short:         "trailforks-cli pulls region, ride and profile data out of trailforks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(debug)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", DefaultConfigFile, "The config file, searched for up the directory tree when given without a directory.")
	flags.StringVar(&format, "format", "table", "The output format, either 'table' or 'csv'.")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging (and http dumps when debug_dump_dir is set).")
	flags.StringVar(&regionDb, "region-db", "", "The region lookup database, overrides region_db of the config.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
