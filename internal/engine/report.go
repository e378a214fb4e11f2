package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/assetworld/internal/resolve"
	"github.com/talgya/assetworld/internal/world"
)

// Report is what the engine publishes after each resolution.
type Report struct {
	Tick       uint64           `json:"tick"`
	Indicators world.Indicators `json:"indicators"`
	Summary    resolve.Summary  `json:"summary"`
}

// Log writes the report at Info.
func (r Report) Log() {
	ind := r.Indicators
	slog.Info("tick report",
		"tick", r.Tick,
		"population", humanize.Comma(int64(ind.TotalPopulation)),
		"assets", humanize.Comma(int64(ind.TotalAssets)),
		"avg_happiness", fmt.Sprintf("%.3f", ind.AvgHappiness),
		"conflicts", r.Summary.Conflicts,
		"births", r.Summary.Reproductions,
		"assassinations", r.Summary.Assassinations,
		"transfers", r.Summary.Transfers,
		"deaths", ind.Stats.Deaths,
		"regenerated", ind.Stats.Regenerated,
	)
}

// String renders a one-line summary for the CLI.
func (r Report) String() string {
	return fmt.Sprintf("tick %s: %s individuals, %s assets, happiness %.3f",
		humanize.Comma(int64(r.Tick)),
		humanize.Comma(int64(r.Indicators.TotalPopulation)),
		humanize.Comma(int64(r.Indicators.TotalAssets)),
		r.Indicators.AvgHappiness,
	)
}
