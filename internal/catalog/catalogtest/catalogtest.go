// Package catalogtest provides realistic catalogs for tests in other packages.
package catalogtest

import (
	"fmt"

	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// XI returns eleven player ids for team, e.g. "CSK-01".."CSK-11".
func XI(team string) []string {
	xi := make([]string, cricket.XISize)
	for i := range xi {
		xi[i] = fmt.Sprintf("%s-%02d", team, i+1)
	}
	return xi
}

// Snapshot is a T20-shaped snapshot that knows teams and their XI but no
// venues. For every team in teams, overs 0-13 are spread over the last five
// players of the XI; overs 14-19 are left unseen so the fallback path gets
// exercised.
func Snapshot(teams ...string) catalog.Snapshot {
	snap := catalog.Snapshot{
		Legal:            0.95,
		Wicket:           0.05,
		DirectRunOut:     0.3,
		NonStrikerRunOut: 0.4,
		TossFallback:     0.45,
		Runs:             map[int]float64{0: 0.36, 1: 0.34, 2: 0.08, 3: 0.01, 4: 0.13, 6: 0.08},
		Dismissals: map[cricket.DismissalType]float64{
			cricket.DismissalCaught:          0.58,
			cricket.DismissalBowled:          0.17,
			cricket.DismissalLBW:             0.1,
			cricket.DismissalRunOut:          0.08,
			cricket.DismissalStumped:         0.04,
			cricket.DismissalCaughtAndBowled: 0.03,
		},
		LegalExtras: []catalog.ExtraWeight{
			{Type: cricket.ExtraNone, Runs: 0, Weight: 0.96},
			{Type: cricket.ExtraBye, Runs: 1, Weight: 0.01},
			{Type: cricket.ExtraLegBye, Runs: 1, Weight: 0.025},
			{Type: cricket.ExtraLegBye, Runs: 4, Weight: 0.005},
		},
		IllegalExtras: []catalog.ExtraWeight{
			{Type: cricket.ExtraWide, Runs: 1, Weight: 0.7},
			{Type: cricket.ExtraWide, Runs: 5, Weight: 0.02},
			{Type: cricket.ExtraNoBall, Runs: 1, Weight: 0.28},
		},
	}
	for _, team := range teams {
		xi := XI(team)
		snap.Teams = append(snap.Teams, team)
		snap.Players = append(snap.Players, xi...)
		bowlers := xi[6:]
		for over := 0; over < 14; over++ {
			w := make(map[string]float64, len(bowlers))
			for i, b := range bowlers {
				w[b] = float64(1 + (i+over)%3)
			}
			snap.Bowlers = append(snap.Bowlers, catalog.BowlerWeights{Team: team, Over: over, Weights: w})
		}
	}
	return snap
}

// Catalog builds Snapshot(teams...) and panics on error.
func Catalog(teams ...string) *catalog.Catalog {
	c, err := Snapshot(teams...).Catalog()
	if err != nil {
		panic(err)
	}
	return c
}
