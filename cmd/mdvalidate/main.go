package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuanb/carriageway-validator/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mdvalidate",
	Short: "Divided carriageway topology validator",
	Long: `Recomputes the MULTIDIGIT (divided carriageway) flag of every link in a
street network sector from its geometry and attributes, compares it with the
recorded flag, and finds POIs placed between the two carriageways of a divided road.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			c.Data.Dir = dir
		}
		if format, _ := cmd.Flags().GetString("format"); format != "" {
			c.Data.Format = format
		}
		if err := c.Check(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		if interval, _ := cmd.Flags().GetDuration("metrics-interval"); interval > 0 {
			startMetricsLogger(cmd.Context(), interval)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("data-dir", "", "sector data directory (overrides config)")
	f.String("format", "", "network file format: geojson or shapefile (overrides config)")
	f.Duration("metrics-interval", 0*time.Second, "log runtime metrics at this interval (0 disables)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
