package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// NextRefreshStat returns a stat panel showing time until the next scheduled
// refresh cycle.
func NextRefreshStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Refresh").
		Description("Time until next scheduled refresh cycle").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`eanwatch_scheduler_next_refresh_timestamp_seconds{job="ean-watch"} - time()`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// NextPruneStat returns a stat panel showing time until the next scheduled
// snapshot prune.
func NextPruneStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Prune").
		Description("Time until next scheduled snapshot prune").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`eanwatch_scheduler_next_prune_timestamp_seconds{job="ean-watch"} - time()`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}
