package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg          *config.Config
	fixturesPath string
)

var rootCmd = &cobra.Command{
	Use:          "underwrite",
	Short:        "Commercial real estate underwriting workbench",
	Long:         "Ranks sale and rent comparables against the subject property and drives reputation screening of the deal's borrowers, sponsors and related parties.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if fixturesPath != "" {
			c.Fixtures.Path = fixturesPath
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		zap.L().Debug("config loaded",
			zap.String("version", version),
			zap.String("fixtures", cfg.Fixtures.Path),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fixturesPath, "fixtures", "", "seed catalog YAML (default: embedded catalog)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
