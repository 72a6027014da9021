package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/osm"
	"kuanb/carriageway-validator/report"
)

var osmCmd = &cobra.Command{
	Use:   "osm <extract.osm.pbf>",
	Short: "Validate divided carriageway tagging of an OSM extract",
	Long: `Reads highway ways from an OpenStreetMap PBF extract, splits them into
links at intersections and validates them like a vendor sector. The recorded
flag comes from dual_carriageway, or from one-way tagging on major roads.`,
	Args: cobra.ExactArgs(1),
	RunE: runOSM,
}

func init() {
	f := osmCmd.Flags()
	f.String("sector", "osm", "sector name used in logs and report file names")
	f.Int("workers", 0, "concurrent segment evaluations (overrides config)")
	addReportFlags(osmCmd)
	rootCmd.AddCommand(osmCmd)
}

func runOSM(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	network, err := osm.LoadOsmFile(args[0])
	if err != nil {
		return err
	}
	sector, _ := cmd.Flags().GetString("sector")
	ds := network.Dataset(sector)

	tally, err := multidigit.NewValidator(validatorConfig(cmd)).Run(ctx, ds)
	if err != nil {
		return err
	}
	report.LogTally(tally)

	return writeReports(reportDir(cmd), ds, tally, nil, nil)
}
