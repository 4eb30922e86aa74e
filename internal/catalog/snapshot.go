package catalog

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// Snapshot is the on-disk YAML form of a Catalog, used by the offline CLI and
// by tests that need a hand-written catalog.
type Snapshot struct {
	Legal            float64                           `yaml:"legal"`
	Wicket           float64                           `yaml:"wicket"`
	DirectRunOut     float64                           `yaml:"direct_run_out"`
	NonStrikerRunOut float64                           `yaml:"non_striker_run_out"`
	TossFallback     float64                           `yaml:"toss_fallback"`
	Runs             map[int]float64                   `yaml:"runs"`
	Dismissals       map[cricket.DismissalType]float64 `yaml:"dismissals"`
	LegalExtras      []ExtraWeight                     `yaml:"legal_extras"`
	IllegalExtras    []ExtraWeight                     `yaml:"illegal_extras"`
	Bowlers          []BowlerWeights                   `yaml:"bowlers"`
	Toss             []TossWeight                      `yaml:"toss"`

	// Ids the snapshot was fitted on. Templates played against it may only
	// reference these.
	Venues  []string `yaml:"venues"`
	Teams   []string `yaml:"teams"`
	Players []string `yaml:"players"`
}

type ExtraWeight struct {
	Type   cricket.ExtraType `yaml:"type"`
	Runs   int               `yaml:"runs"`
	Weight float64           `yaml:"weight"`
}

type BowlerWeights struct {
	Team    string             `yaml:"team"`
	Over    int                `yaml:"over"`
	Weights map[string]float64 `yaml:"weights"`
}

type TossWeight struct {
	Venue  string  `yaml:"venue"`
	Winner string  `yaml:"winner"`
	Bat    float64 `yaml:"bat"`
}

// ReadSnapshot parses the YAML snapshot at path without building it.
func ReadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	raw, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse catalog snapshot: %w", err)
	}
	return snap, nil
}

// LoadSnapshot reads a YAML snapshot from path and builds the Catalog.
func LoadSnapshot(path string) (*Catalog, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return snap.Catalog()
}

// Catalog converts the snapshot. Weights need not be normalized.
func (s Snapshot) Catalog() (*Catalog, error) {
	runs, err := smoothed(s.Runs, nil, 0, cmp.Compare[int])
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	dismissals, err := smoothed(s.Dismissals, nil, 0, cmp.Compare[cricket.DismissalType])
	if err != nil {
		return nil, fmt.Errorf("dismissals: %w", err)
	}
	legalExtras, err := extraDistribution(s.LegalExtras)
	if err != nil {
		return nil, fmt.Errorf("legal extras: %w", err)
	}
	illegalExtras, err := extraDistribution(s.IllegalExtras)
	if err != nil {
		return nil, fmt.Errorf("illegal extras: %w", err)
	}

	opts := Options{
		Legal:            Bernoulli{P: s.Legal},
		Wicket:           Bernoulli{P: s.Wicket},
		DirectRunOut:     Bernoulli{P: s.DirectRunOut},
		NonStrikerRunOut: Bernoulli{P: s.NonStrikerRunOut},
		TossFallback:     Bernoulli{P: s.TossFallback},
		Runs:             runs,
		Dismissals:       dismissals,
		LegalExtras:      legalExtras,
		IllegalExtras:    illegalExtras,
		Bowlers:          make(map[BowlerKey]Distribution[string], len(s.Bowlers)),
		Toss:             make(map[TossKey]Bernoulli, len(s.Toss)),
	}
	for _, bw := range s.Bowlers {
		d, err := smoothed(bw.Weights, nil, 0, cmp.Compare[string])
		if err != nil {
			return nil, fmt.Errorf("bowlers %s/%d: %w", bw.Team, bw.Over, err)
		}
		opts.Bowlers[BowlerKey{Team: bw.Team, Over: bw.Over}] = d
	}
	for _, t := range s.Toss {
		opts.Toss[TossKey{Venue: t.Venue, TossWinner: t.Winner}] = Bernoulli{P: t.Bat}
	}
	return New(opts)
}

func extraDistribution(ws []ExtraWeight) (Distribution[cricket.Extra], error) {
	sorted := slices.Clone(ws)
	slices.SortFunc(sorted, func(a, b ExtraWeight) int {
		return compareExtra(cricket.Extra{Type: a.Type, Runs: a.Runs}, cricket.Extra{Type: b.Type, Runs: b.Runs})
	})
	outcomes := make([]cricket.Extra, len(sorted))
	weights := make([]float64, len(sorted))
	for i, w := range sorted {
		outcomes[i] = cricket.Extra{Type: w.Type, Runs: w.Runs}
		weights[i] = w.Weight
	}
	return FromWeights(outcomes, weights)
}
