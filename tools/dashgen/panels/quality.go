package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
)

// QualityDistribution returns a bar gauge panel showing the distribution of
// computed snapshot quality scores across histogram buckets.
func QualityDistribution() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Quality Distribution").
		Description("Distribution of snapshot quality scores (0-100)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(
			`sum(increase(eanwatch_quality_distribution_bucket{job="ean-watch"}[1h])) by (le)`,
			"{{le}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}
