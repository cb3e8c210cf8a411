package diff

import (
	"fmt"

	"github.com/archlint/archlint/internal/snapshot"
)

// trackableMetrics are compared for worsening between snapshots.
var trackableMetrics = []string{
	"fanIn",
	"fanOut",
	"cycleLength",
	"complexity",
	"lcom",
	"cbo",
	"depth",
	"cloneInstances",
}

// compareMetrics emits MetricWorsening / MetricImprovement entries for the
// trackable metrics present on both sides. cloneInstances compares strictly
// (one more copy is a regression regardless of percent); everything else
// uses the percent threshold. A metric going from 0 to anything positive is
// reported as a flat +100%.
func (e *Engine) compareMetrics(id string, base, curr *snapshot.Smell) ([]Regression, []Improvement) {
	var regressions []Regression
	var improvements []Improvement

	for _, name := range trackableMetrics {
		baseVal, baseOK := base.Metrics[name]
		currVal, currOK := curr.Metrics[name]
		if !baseOK || !currOK || !baseVal.IsNumber() || !currVal.IsNumber() {
			continue
		}

		baseF := baseVal.AsFloat()
		currF := currVal.AsFloat()

		if baseF == 0 {
			if currF > 0 {
				regressions = append(regressions, Regression{
					ID: id, Type: MetricWorsening, Smell: curr,
					Metric: name, From: baseF, To: currF, ChangePercent: 100,
					Message: fmt.Sprintf("%s worsened: %s 0 -> %d (+100%%)",
						curr.SmellType, name, int64(currF)),
				})
			}
			continue
		}

		changePercent := (currF - baseF) / baseF * 100

		worsened := changePercent >= e.thresholdPercent
		if name == "cloneInstances" {
			worsened = currF > baseF
		}

		switch {
		case worsened:
			regressions = append(regressions, Regression{
				ID: id, Type: MetricWorsening, Smell: curr,
				Metric: name, From: baseF, To: currF, ChangePercent: changePercent,
				Message: fmt.Sprintf("%s worsened: %s %d -> %d (%+.0f%%)",
					curr.SmellType, name, int64(baseF), int64(currF), changePercent),
			})
		case changePercent <= -e.thresholdPercent:
			improvements = append(improvements, Improvement{
				ID: id, Type: MetricImprovement,
				Metric: name, From: baseF, To: currF,
				Message: fmt.Sprintf("%s improved: %s %d -> %d (%.0f%%)",
					curr.SmellType, name, int64(baseF), int64(currF), changePercent),
			})
		}
	}

	return regressions, improvements
}
