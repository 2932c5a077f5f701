// Package cli implements the report explorer command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"report_explorer/internal/explorer"
	"report_explorer/internal/tui"
)

// app is shared by every subcommand once flags are parsed.
type app struct {
	v        *viper.Viper
	cfg      *Config
	explorer *explorer.Explorer
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.explorer = explorer.New(explorer.NewClient(cfg.APIURL, cfg.Timeout))
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:               "explorer",
		Short:             "Browse report reviews and manage favorites",
		Long:              "Load reviews through the report explorer API, fuzzy-search and filter them, chart their scores and keep favorites.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.explorer)
		},
	}

	rootCmd.PersistentFlags().String("api-url", explorer.DefaultBaseURL, "Report explorer API base URL (env EXPLORER_API_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for API calls (default 30s)")

	rootCmd.AddCommand(
		newReportsCmd(a),
		newFavoritesCmd(a),
		newExportCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", explorer.Describe(err))
		os.Exit(1)
	}
}
