// Package validate checks generated dashboards and rules for PromQL parse
// errors and references to metrics the service does not export.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Parse failures are errors; references
// to unknown metrics are warnings.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation produced no errors.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Dashboard validates every panel query in a built dashboard against the
// known metric set.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result
	for _, p := range dash.Panels {
		if p.Panel != nil {
			res.merge(panelExprs(*p.Panel, known))
		}
		if p.RowPanel != nil {
			for _, inner := range p.RowPanel.Panels {
				res.merge(panelExprs(inner, known))
			}
		}
	}
	return res
}

// Expr validates a single PromQL expression. The context string prefixes any
// finding so callers can tell which panel or rule produced it.
func Expr(context, expr string, known map[string]bool) Result {
	var res Result
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", context, expr, err))
		return res
	}
	for _, name := range metricNames(parsed) {
		if !knownMetric(name, known) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: unknown metric %q", context, name))
		}
	}
	return res
}

func panelExprs(p dashboard.Panel, known map[string]bool) Result {
	var res Result
	title := "(untitled)"
	if p.Title != nil {
		title = *p.Title
	}
	for _, target := range p.Targets {
		expr, err := targetExpr(target)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("panel %q: %v", title, err))
			continue
		}
		if expr == "" {
			continue
		}
		res.merge(Expr(fmt.Sprintf("panel %q", title), expr, known))
	}
	return res
}

// targetExpr extracts the expr field from a dataquery without depending on
// its concrete type. Built dashboards carry targets as opaque dataqueries,
// so a JSON round-trip is the stable way to reach the expression.
func targetExpr(target any) (string, error) {
	raw, err := json.Marshal(target)
	if err != nil {
		return "", fmt.Errorf("marshaling target: %w", err)
	}
	var q struct {
		Expr string `json:"expr"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", fmt.Errorf("decoding target: %w", err)
	}
	return q.Expr, nil
}

func metricNames(expr parser.Expr) []string {
	var names []string
	parser.Inspect(expr, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := vs.Name
		if name == "" {
			for _, m := range vs.LabelMatchers {
				if m.Name == labels.MetricName {
					name = m.Value
				}
			}
		}
		if name != "" {
			names = append(names, name)
		}
		return nil
	})
	return names
}

// knownMetric accepts histogram series suffixes so queries over _bucket,
// _sum, and _count match the base metric name.
func knownMetric(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}
