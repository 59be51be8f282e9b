// Command dashgen generates the Grafana dashboard and Prometheus rule files
// under deploy/ from builders defined in code. Run with -validate to check
// the generated artifacts without writing them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/eansearch/eansearch-go/tools/dashgen/dashboards"
	"github.com/eansearch/eansearch-go/tools/dashgen/rules"
	"github.com/eansearch/eansearch-go/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by dashgen; DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	dashJSON, err := buildDashboard()
	if err != nil {
		return err
	}

	recordingYAML, err := buildRules(rules.RecordingRules())
	if err != nil {
		return err
	}

	alertsYAML, err := buildRules(rules.AlertRules())
	if err != nil {
		return err
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	if cfg.DashboardEnabled {
		path := filepath.Join(cfg.OutputDir, "grafana", "data", "eanwatch-overview.json")
		if err := writeFile(path, dashJSON); err != nil {
			return err
		}
	}

	if cfg.RulesEnabled {
		path := filepath.Join(cfg.OutputDir, "prometheus", "eanwatch-recording-rules.yaml")
		if err := writeFile(path, recordingYAML); err != nil {
			return err
		}

		path = filepath.Join(cfg.OutputDir, "prometheus", "eanwatch-alerts.yaml")
		if err := writeFile(path, alertsYAML); err != nil {
			return err
		}
	}

	return nil
}

// buildDashboard builds and validates the overview dashboard, returning its
// JSON representation.
func buildDashboard() ([]byte, error) {
	dash, err := dashboards.BuildOverview().Build()
	if err != nil {
		return nil, fmt.Errorf("building overview dashboard: %w", err)
	}

	result := validate.Dashboard(dash, KnownMetrics)
	if err := reportFindings("dashboard", result); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling dashboard: %w", err)
	}
	return append(data, '\n'), nil
}

// buildRules validates every expression in a PrometheusRule CR and returns
// its YAML representation with the generated-file header.
func buildRules(cr rules.PrometheusRule) ([]byte, error) {
	var result validate.Result
	for _, group := range cr.Spec.Groups {
		for _, rule := range group.Rules {
			name := rule.Record
			if name == "" {
				name = rule.Alert
			}
			r := validate.Expr(fmt.Sprintf("rule %q", name), rule.Expr, KnownMetrics)
			result.Errors = append(result.Errors, r.Errors...)
			result.Warnings = append(result.Warnings, r.Warnings...)
		}
	}
	if err := reportFindings(cr.Metadata.Name, result); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", cr.Metadata.Name, err)
	}
	return append([]byte(generatedHeader), data...), nil
}

func reportFindings(what string, result validate.Result) error {
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Ok() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("%s failed validation with %d errors", what, len(result.Errors))
	}
	if len(result.Warnings) > 0 {
		return fmt.Errorf("%s references %d unknown metrics", what, len(result.Warnings))
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
