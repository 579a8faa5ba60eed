// Package hallucination implements the Hallucination module:
// phantom, newborn, and typosquat-risk checks against declared
// dependencies.
package hallucination

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"aegis/internal/config"
	"aegis/internal/manifest"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/toppackages"
)

// Module implements rules.Module.
type Module struct{}

// New returns a Hallucination module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "hallucination" }

func (m *Module) IsEnabled(cfg *config.Config) bool { return cfg.Hallucination.Enabled }

func (m *Module) Analyze(rc *rules.Context) []model.Alert {
	var alerts []model.Alert
	cfg := rc.Config.Hallucination

	for _, f := range rc.ManifestFiles() {
		content, ok := rc.Contents[f.Path]
		if !ok {
			continue
		}
		deps := manifest.Parse(f.Path, []byte(content.Text))
		for _, dep := range deps {
			alerts = append(alerts, m.checkDependency(rc, dep, cfg)...)
		}
	}
	return alerts
}

func (m *Module) checkDependency(rc *rules.Context, dep model.Dependency, cfg config.Hallucination) []model.Alert {
	exists, err := rc.Registry.Exists(rc.Ctx, dep.Name, dep.Registry)
	if err != nil {
		// Network error other than 404: propagate no information for this
		// dependency, no alert.
		return nil
	}
	if !exists {
		alert, ok := rules.Emit(rc, model.Alert{
			ID:       uuid.NewString(),
			Severity: model.SeverityCritical,
			RuleID:   "phantom-package",
			Module:   m.Name(),
			Message:  fmt.Sprintf("dependency %q declared in %s does not exist on %s", dep.Name, dep.ManifestPath, dep.Registry),
			File:     dep.ManifestPath,
		})
		if ok {
			return []model.Alert{alert}
		}
		return nil
	}

	var alerts []model.Alert

	if rc.Config.SupplyChain.CheckNewborn {
		info, err := rc.Registry.Info(rc.Ctx, dep.Name, dep.Registry)
		if err == nil && info != nil {
			threshold := cfg.PackageAgeThresholdDays
			if threshold <= 0 {
				threshold = 30
			}
			if age := info.AgeDays(time.Now()); age < float64(threshold) {
				if alert, ok := rules.Emit(rc, model.Alert{
					ID:       uuid.NewString(),
					Severity: model.SeverityMedium,
					RuleID:   "newborn-package",
					Module:   m.Name(),
					Message:  fmt.Sprintf("dependency %q is only %.0f days old (threshold %d)", dep.Name, age, threshold),
					File:     dep.ManifestPath,
				}); ok {
					alerts = append(alerts, alert)
				}
			}
		}
	}

	distance := cfg.TyposquatLevenshteinDistance
	if distance < 1 || distance > 3 {
		distance = 1
	}
	if match, found := toppackages.ClosestMatch(dep.Name, dep.Registry, cfg.TopPackagesCount, distance); found {
		if alert, ok := rules.Emit(rc, model.Alert{
			ID:       uuid.NewString(),
			Severity: model.SeverityMedium,
			RuleID:   "typosquat-risk",
			Module:   m.Name(),
			Message:  fmt.Sprintf("dependency %q is %d edit(s) from popular package %q; possible typosquat", dep.Name, distance, match),
			File:     dep.ManifestPath,
		}); ok {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}
