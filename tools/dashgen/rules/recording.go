package rules

// RecordingRules returns the CR with the pre-computed rate expressions
// the dashboard panels and alert rules query.
func RecordingRules() PrometheusRule {
	return newCR("eanwatch-recording-rules", RuleGroup{
		Name: "eanwatch-recording",
		Rules: []Rule{
			{
				Record: "eanwatch:http_requests:rate5m",
				Expr:   `sum(rate(eanwatch_http_requests_total[5m]))`,
			},
			{
				Record: "eanwatch:http_errors:rate5m",
				Expr:   `sum(rate(eanwatch_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "eanwatch:refresh_watches:rate5m",
				Expr:   `rate(eanwatch_refresh_watches_total[5m])`,
			},
			{
				Record: "eanwatch:refresh_errors:rate5m",
				Expr:   `rate(eanwatch_refresh_errors_total[5m])`,
			},
			{
				Record: "eanwatch:api_calls:rate5m",
				Expr:   `rate(eanwatch_api_calls_total[5m])`,
			},
		},
	})
}
