package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/poi"
	"kuanb/carriageway-validator/report"
	"kuanb/carriageway-validator/roadnet"
)

var validateCmd = &cobra.Command{
	Use:   "validate <sector> [sector...]",
	Short: "Check recorded MULTIDIGIT flags against geometry",
	Long: `Loads each sector's STREETS_NAV and STREETS_NAMING_ADDRESSING layers,
recomputes the divided carriageway flag of every link and reports the agreement
rate and a sample of mismatches.

Examples:
  # Validate one sector with GeoJSON deliveries under ./data
  mdvalidate validate 4815075 --data-dir ./data

  # Validate two shapefile sectors and write JSON and KML reports
  mdvalidate validate 4815075 4815079 --format shapefile --reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.Int("workers", 0, "concurrent segment evaluations (overrides config)")
	addReportFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func validatorConfig(cmd *cobra.Command) multidigit.Config {
	vc := multidigit.Config{
		Workers:          cfg.Validate.Workers,
		SampleCap:        cfg.Validate.SampleCap,
		SiblingThreshold: cfg.Validate.SiblingThreshold,
		LaneWidth:        cfg.Validate.LaneWidth,
	}
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		vc.Workers = w
	}
	return vc
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := reportDir(cmd)
	source := roadnet.NewSectorSource(cfg.Data.Dir, cfg.Data.Format)
	validator := multidigit.NewValidator(validatorConfig(cmd))

	for _, sector := range args {
		ds, err := source.Load(sector)
		if err != nil {
			return eris.Wrapf(err, "validate: load sector %s", sector)
		}
		tally, err := validator.Run(ctx, ds)
		if err != nil {
			return err
		}
		report.LogTally(tally)
		if err := writeReports(out, ds, tally, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("reports", false, "write JSON and KML reports to report.dir")
	cmd.Flags().String("out", "", "report directory (overrides report.dir, implies --reports)")
}

// reportDir is where reports go, or "" when none were asked for
func reportDir(cmd *cobra.Command) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	if on, _ := cmd.Flags().GetBool("reports"); on {
		return cfg.Report.Dir
	}
	return ""
}

// writeReports writes <sector>.json and <sector>.kml into dir
func writeReports(dir string, ds *roadnet.SectorDataset, t *multidigit.Tally, res *poi.Result, adjs []poi.Adjudication) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "reports: create %s", dir)
	}

	export, err := report.NewExport(ds, t, res, adjs)
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(dir, ds.Sector+".json")
	if err := writeFile(jsonPath, func(f *os.File) error { return report.WriteJSON(f, export) }); err != nil {
		return err
	}
	kmlPath := filepath.Join(dir, ds.Sector+".kml")
	if err := writeFile(kmlPath, func(f *os.File) error { return report.WriteKML(f, ds, t, res, adjs) }); err != nil {
		return err
	}
	zap.L().Info("reports written", zap.String("json", jsonPath), zap.String("kml", kmlPath))
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "reports: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
