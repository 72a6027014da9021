package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"kuanb/carriageway-validator/classify"
	"kuanb/carriageway-validator/imagery"
	"kuanb/carriageway-validator/poi"
	"kuanb/carriageway-validator/report"
	"kuanb/carriageway-validator/roadnet"
)

var poiCmd = &cobra.Command{
	Use:   "poi <sector>",
	Short: "Find POIs placed between divided carriageways",
	Long: `Interpolates every POI of a sector along its link's naming geometry and
flags the ones that fall between the link and its sibling carriageway.

With --adjudicate, each violation is checked against satellite imagery: a
street-centred and a sidewalk-offset patch are classified and combined into a
disposition (no POI in reality, POI on sidewalk, or legit exception).

Examples:
  mdvalidate poi 4815079 --limit 1000
  MDV_IMAGERY_API_KEY=... mdvalidate poi 4815079 --recheck --adjudicate --out reports`,
	Args: cobra.ExactArgs(1),
	RunE: runPOI,
}

func init() {
	f := poiCmd.Flags()
	f.Bool("recheck", false, "require both carriageways to meet the divided road criteria (overrides config when set)")
	f.Int("limit", 0, "stop after this many POI rows (overrides config)")
	f.Bool("adjudicate", false, "classify violations against satellite imagery")
	addReportFlags(poiCmd)
	rootCmd.AddCommand(poiCmd)
}

func runPOI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := poi.Options{Recheck: cfg.POI.Recheck, Limit: cfg.POI.Limit}
	if recheck, _ := cmd.Flags().GetBool("recheck"); recheck {
		opts.Recheck = true
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		opts.Limit = limit
	}

	sector := args[0]
	ds, err := roadnet.NewSectorSource(cfg.Data.Dir, cfg.Data.Format).Load(sector)
	if err != nil {
		return eris.Wrapf(err, "poi: load sector %s", sector)
	}
	res, err := poi.NewDetector(opts).Detect(ctx, ds)
	if err != nil {
		return err
	}

	var adjs []poi.Adjudication
	if adjudicate, _ := cmd.Flags().GetBool("adjudicate"); adjudicate && len(res.Violations) > 0 {
		adj, err := newAdjudicator()
		if err != nil {
			return err
		}
		if adjs, err = adj.AdjudicateAll(ctx, res.Violations); err != nil {
			return err
		}
	}

	report.LogViolations(res, adjs)
	return writeReports(reportDir(cmd), ds, nil, res, adjs)
}

func newAdjudicator() (*poi.Adjudicator, error) {
	if cfg.Imagery.APIKey == "" {
		return nil, imagery.ErrNoAPIKey
	}
	categories, err := classify.LoadCategories(cfg.Classifier.CategoriesFile)
	if err != nil {
		return nil, err
	}

	tiles := imagery.NewTileClient(imagery.TileConfig{
		APIKey:        cfg.Imagery.APIKey,
		URLTemplate:   cfg.Imagery.URLTemplate,
		Format:        cfg.Imagery.Format,
		RatePerSecond: cfg.Imagery.RatePerSecond,
		Retries:       cfg.Imagery.Retries,
		Timeout:       cfg.Imagery.Timeout(),
	})
	patcher := imagery.NewPatcher(tiles, imagery.PatchConfig{
		Zoom:           cfg.Imagery.Zoom,
		PatchSize:      cfg.Imagery.PatchSize,
		SidewalkOffset: cfg.Imagery.SidewalkOffset,
	})
	classifier := classify.NewClient(cfg.Classifier.BaseURL, categories, cfg.Classifier.Timeout())
	return poi.NewAdjudicator(patcher, classifier), nil
}
