// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/eansearch/eansearch-go/tools/dashgen/panels"
)

// BuildOverview constructs the ean-watch Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("ean-watch Overview").
		Uid("eanwatch-overview").
		Tags([]string{"eanwatch", "ean-search"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.CreditsStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: EAN-Search API.
	b.WithRow(dashboard.NewRowBuilder("EAN-Search API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	// Row 4: Refresh.
	b.WithRow(dashboard.NewRowBuilder("Refresh").
		WithPanel(panels.RefreshRate()).
		WithPanel(panels.RefreshErrors()).
		WithPanel(panels.CycleDuration()))

	// Row 5: Quality.
	b.WithRow(dashboard.NewRowBuilder("Quality").
		WithPanel(panels.QualityDistribution()))

	// Row 6: Changes & Alerts.
	b.WithRow(dashboard.NewRowBuilder("Changes & Alerts").
		WithPanel(panels.AlertsRate()).
		WithPanel(panels.ChangesRate()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	// Row 7: Scheduler.
	b.WithRow(dashboard.NewRowBuilder("Scheduler").
		WithPanel(panels.NextRefreshStat()).
		WithPanel(panels.NextPruneStat()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
