package tui

import (
	"fmt"
	"strings"

	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/history"
)

const missing = "–"

// RenderAggregates prints aggregates as an aligned table.
func RenderAggregates(state history.State, aggs []weatherdb.Aggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%s bis %s (%s)", state.FromString(), state.ToString(), state.Granularity.Label())))
	if len(aggs) == 0 {
		b.WriteString(mutedStyle.Render("Keine Daten im gewählten Zeitraum"))
		b.WriteString("\n")
		return b.String()
	}

	layout := "2006-01-02"
	if state.Granularity == history.Hourly {
		layout = "2006-01-02 15:04"
	}

	header := fmt.Sprintf("%-16s %8s %8s %8s %12s", "Zeit", "Ø °C", "Min °C", "Max °C", "Regen mm")
	b.WriteString(mutedStyle.Render(header))
	b.WriteString("\n")
	for _, a := range aggs {
		fmt.Fprintf(&b, "%-16s %8s %s %s %12s\n",
			a.Time.Format(layout),
			number(a.TempAvg, 1),
			coldStyle.Render(fmt.Sprintf("%8s", number(a.TempMin, 1))),
			warmStyle.Render(fmt.Sprintf("%8s", number(a.TempMax, 1))),
			number(a.RainMM, 2),
		)
	}
	return b.String()
}

func number(v *float64, places int) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.*f", places, *v)
}
