// Package report renders validation tallies and POI findings as log summaries,
// KML layers and JSON exports.
package report

import (
	"go.uber.org/zap"

	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/poi"
)

// LogTally writes a tally and its mismatch sample to the global logger
func LogTally(t *multidigit.Tally) {
	log := zap.L().With(zap.String("run_id", t.RunID), zap.String("sector", t.Sector))
	log.Info("validation summary",
		zap.Int("total", t.Total),
		zap.Int("ground_truth_y", t.GroundTruthYes),
		zap.Int("ground_truth_n", t.GroundTruthNo),
		zap.Int("match_y", t.MatchYes),
		zap.Int("match_n", t.MatchNo),
		zap.Int("wrong_y", t.WrongYes),
		zap.Int("wrong_n", t.WrongNo),
		zap.Int("skipped", t.Skipped),
		zap.Int("errors", t.Errors),
		zap.Float64("agreement_rate", t.AgreementRate()),
	)
	for _, m := range t.Mismatches {
		log.Info("mismatch",
			zap.Int64("link_id", m.LinkID),
			zap.String("direction", m.Direction),
			zap.String("separator", string(m.Params.SeparatorType)),
			zap.Float64("separator_width", m.Params.SeparatorWidth),
			zap.Float64("separator_length", m.Params.SeparatorLength),
			zap.Float64("roadbed_distance", m.Params.RoadbedDistance),
			zap.Int64("sibling_id", m.Params.SiblingID),
		)
	}
}

// LogViolations writes a POI detection result and any adjudications to the global logger
func LogViolations(res *poi.Result, adjs []poi.Adjudication) {
	wrongSide := 0
	for _, a := range adjs {
		if a.WrongSide() {
			wrongSide++
		}
	}

	log := zap.L().With(zap.String("sector", res.Sector))
	log.Info("poi summary",
		zap.Int("scanned", res.Scanned),
		zap.Int("on_divided", res.OnDivided),
		zap.Int("violations", len(res.Violations)),
		zap.Int("adjudicated", len(adjs)),
		zap.Int("wrong_side", wrongSide),
	)
	verdicts := adjudicationsByPOI(adjs)
	for _, v := range res.Violations {
		fields := []zap.Field{
			zap.Int64("poi_id", v.POIID),
			zap.String("name", v.Name),
			zap.Int64("link_id", v.LinkID),
			zap.Int64("sibling_id", v.SiblingID),
			zap.String("street", v.StreetName),
			zap.Float64("percent", v.Percent),
			zap.Float64("lon", v.Coord.Lon()),
			zap.Float64("lat", v.Coord.Lat()),
		}
		if a, ok := verdicts[v.POIID]; ok {
			fields = append(fields,
				zap.Strings("result", a.Result[:]),
				zap.String("action", string(a.Action)),
				zap.Bool("wrong_side", a.WrongSide()),
			)
		}
		log.Info("violation", fields...)
	}
}

func adjudicationsByPOI(adjs []poi.Adjudication) map[int64]poi.Adjudication {
	m := make(map[int64]poi.Adjudication, len(adjs))
	for _, a := range adjs {
		m[a.POIID] = a
	}
	return m
}
