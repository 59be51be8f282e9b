package rules

// AlertRules returns the CR with the operational alerts for the ean-watch
// service: availability, error rates, credits, budget, delivery, scheduler.
func AlertRules() PrometheusRule {
	return newCR("eanwatch-alerts", RuleGroup{
		Name: "eanwatch-alerts",
		Rules: []Rule{
			{
				Alert: "EanWatchDown",
				Expr:  `absent(up{job="ean-watch"})`,
				For:   "2m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "ean-watch is down",
					"description": "The ean-watch job has been absent for more than 2 minutes.",
				},
			},
			{
				Alert: "EanWatchReadinessDown",
				Expr:  `eanwatch_readyz_up == 0`,
				For:   "2m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "ean-watch readiness check is failing",
					"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
				},
			},
			{
				Alert: "EanWatchHighErrorRate",
				Expr:  `eanwatch:http_errors:rate5m / eanwatch:http_requests:rate5m > 0.05`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "High HTTP error rate on ean-watch",
					"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
				},
			},
			{
				Alert: "EanWatchRefreshErrors",
				Expr:  `eanwatch:refresh_errors:rate5m > 0`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Refresh errors detected",
					"description": "The watch refresh cycle has been producing errors for more than 5 minutes.",
				},
			},
			{
				Alert: "EanWatchCreditsLow",
				Expr:  `(eanwatch_credits_remaining < 100) and (eanwatch_credits_remaining >= 0)`,
				For:   "10m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "EAN-Search API credits are running low",
					"description": "Fewer than 100 API credits remain on the EAN-Search account.",
				},
			},
			{
				Alert: "EanWatchDailyBudgetReached",
				Expr:  `increase(eanwatch_api_daily_limit_hits_total[5m]) > 0`,
				For:   "0m",
				Labels: map[string]string{
					"severity": "critical",
				},
				Annotations: map[string]string{
					"summary":     "EAN-Search API daily call budget has been reached",
					"description": "The client-side daily API call budget has been exhausted. Refreshes are deferred until the next day.",
				},
			},
			{
				Alert: "EanWatchNotificationFailures",
				Expr:  `increase(eanwatch_notification_failures_total[5m]) > 0`,
				For:   "1m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Notification delivery failures detected",
					"description": "One or more alert notifications (Discord or webhook) have failed to send.",
				},
			},
			{
				Alert: "EanWatchSchedulerStalled",
				Expr:  `time() - eanwatch_scheduler_next_refresh_timestamp_seconds > 300`,
				For:   "5m",
				Labels: map[string]string{
					"severity": "warning",
				},
				Annotations: map[string]string{
					"summary":     "Refresh scheduler appears stalled",
					"description": "The next scheduled refresh timestamp is more than 5 minutes in the past.",
				},
			},
		},
	})
}
