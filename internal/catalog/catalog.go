package catalog

import (
	"fmt"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// BowlerKey selects the bowler distribution for one over of one side.
type BowlerKey struct {
	Team string
	Over int
}

// TossKey selects the bat/field decision for a toss winner at a venue.
type TossKey struct {
	Venue      string
	TossWinner string
}

// Options carries the distributions a Catalog is assembled from.
type Options struct {
	Legal            Bernoulli
	Wicket           Bernoulli
	DirectRunOut     Bernoulli
	NonStrikerRunOut Bernoulli
	Runs             Distribution[int]
	Dismissals       Distribution[cricket.DismissalType]
	LegalExtras      Distribution[cricket.Extra]
	IllegalExtras    Distribution[cricket.Extra]
	Bowlers          map[BowlerKey]Distribution[string]
	Toss             map[TossKey]Bernoulli
	TossFallback     Bernoulli
}

// Catalog is an immutable collection of sampling distributions. It is safe
// for concurrent use once constructed.
type Catalog struct {
	legal            Bernoulli
	wicket           Bernoulli
	directRunOut     Bernoulli
	nonStrikerRunOut Bernoulli
	runs             Distribution[int]
	dismissals       Distribution[cricket.DismissalType]
	legalExtras      Distribution[cricket.Extra]
	illegalExtras    Distribution[cricket.Extra]
	bowlers          map[BowlerKey]Distribution[string]
	toss             map[TossKey]Bernoulli
	tossFallback     Bernoulli
}

// New validates opts and returns a Catalog that no longer shares maps with
// the caller.
func New(opts Options) (*Catalog, error) {
	for name, b := range map[string]Bernoulli{
		"legal":               opts.Legal,
		"wicket":              opts.Wicket,
		"direct_run_out":      opts.DirectRunOut,
		"non_striker_run_out": opts.NonStrikerRunOut,
		"toss_fallback":       opts.TossFallback,
	} {
		if _, err := NewBernoulli(b.P); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if opts.Legal.P <= 0 {
		return nil, fmt.Errorf("legal: %w: an innings needs legal balls to end", ErrInvalidProbability)
	}
	if opts.Runs.Empty() {
		return nil, fmt.Errorf("runs: %w", ErrEmptyDistribution)
	}
	for _, r := range opts.Runs.outcomes {
		if r < 0 || r > 6 {
			return nil, fmt.Errorf("runs: batter outcome %d out of range", r)
		}
	}
	if opts.Dismissals.Empty() {
		return nil, fmt.Errorf("dismissals: %w", ErrEmptyDistribution)
	}
	if opts.LegalExtras.Empty() {
		return nil, fmt.Errorf("legal extras: %w", ErrEmptyDistribution)
	}
	for _, e := range opts.LegalExtras.outcomes {
		if e.Illegal() || e.Runs < 0 {
			return nil, fmt.Errorf("legal extras: %q is not a legal-delivery extra", e.Type)
		}
	}
	if opts.IllegalExtras.Empty() {
		return nil, fmt.Errorf("illegal extras: %w", ErrEmptyDistribution)
	}
	for _, e := range opts.IllegalExtras.outcomes {
		if !e.Illegal() || e.Runs < 1 {
			return nil, fmt.Errorf("illegal extras: %q/%d is not a wide or no-ball", e.Type, e.Runs)
		}
	}

	c := &Catalog{
		legal:            opts.Legal,
		wicket:           opts.Wicket,
		directRunOut:     opts.DirectRunOut,
		nonStrikerRunOut: opts.NonStrikerRunOut,
		runs:             opts.Runs,
		dismissals:       opts.Dismissals,
		legalExtras:      opts.LegalExtras,
		illegalExtras:    opts.IllegalExtras,
		bowlers:          make(map[BowlerKey]Distribution[string], len(opts.Bowlers)),
		toss:             make(map[TossKey]Bernoulli, len(opts.Toss)),
		tossFallback:     opts.TossFallback,
	}
	for k, d := range opts.Bowlers {
		if d.Empty() {
			return nil, fmt.Errorf("bowlers %s/%d: %w", k.Team, k.Over, ErrEmptyDistribution)
		}
		c.bowlers[k] = d
	}
	for k, b := range opts.Toss {
		if _, err := NewBernoulli(b.P); err != nil {
			return nil, fmt.Errorf("toss %s/%s: %w", k.Venue, k.TossWinner, err)
		}
		c.toss[k] = b
	}
	return c, nil
}

// Bowler returns the bowler distribution for key, if one was observed.
func (c *Catalog) Bowler(key BowlerKey) (Distribution[string], bool) {
	d, ok := c.bowlers[key]
	return d, ok
}

// TossDecision returns the probability that the toss winner bats first,
// falling back to the global average for an unseen venue/winner pair.
func (c *Catalog) TossDecision(key TossKey) Bernoulli {
	if b, ok := c.toss[key]; ok {
		return b
	}
	return c.tossFallback
}

func (c *Catalog) Runs() Distribution[int]                         { return c.runs }
func (c *Catalog) Dismissals() Distribution[cricket.DismissalType] { return c.dismissals }
func (c *Catalog) LegalExtras() Distribution[cricket.Extra]        { return c.legalExtras }
func (c *Catalog) IllegalExtras() Distribution[cricket.Extra]      { return c.illegalExtras }
func (c *Catalog) Legal() Bernoulli                                { return c.legal }
func (c *Catalog) Wicket() Bernoulli                               { return c.wicket }

// BowlerContexts returns the number of (team, over) contexts with data.
func (c *Catalog) BowlerContexts() int { return len(c.bowlers) }
