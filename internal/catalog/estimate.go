package catalog

import (
	"cmp"
	"slices"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// DeliveryObservation is one historical ball as seen by the estimator.
type DeliveryObservation struct {
	BowlingTeam string
	Bowler      string
	Over        int
	Outcome     cricket.Outcome
}

// TossObservation is one historical toss.
type TossObservation struct {
	Venue    string
	Winner   string
	Decision cricket.TossDecision
}

var (
	defaultRuns       = []int{0, 1, 2, 3, 4, 6}
	defaultDismissals = []cricket.DismissalType{
		cricket.DismissalBowled, cricket.DismissalCaught, cricket.DismissalCaughtAndBowled,
		cricket.DismissalLBW, cricket.DismissalRunOut, cricket.DismissalStumped,
	}
	defaultLegalExtras   = []cricket.Extra{{Type: cricket.ExtraNone}, {Type: cricket.ExtraBye, Runs: 1}, {Type: cricket.ExtraLegBye, Runs: 1}}
	defaultIllegalExtras = []cricket.Extra{{Type: cricket.ExtraWide, Runs: 1}, {Type: cricket.ExtraNoBall, Runs: 1}}
)

type binary struct{ yes, no float64 }

func (b *binary) add(v bool) {
	if v {
		b.yes++
	} else {
		b.no++
	}
}

func (b binary) estimate(alpha float64) Bernoulli {
	n := b.yes + b.no + 2*alpha
	if n == 0 {
		return Bernoulli{P: 0.5}
	}
	return Bernoulli{P: (b.yes + alpha) / n}
}

// Builder fits a Catalog from historical observations by frequency counting
// with additive smoothing. It stands in for the statistical estimator and is
// not used while simulating.
type Builder struct {
	alpha float64

	legal, wicket, direct, nonStriker binary
	runs                              map[int]float64
	dismissals                        map[cricket.DismissalType]float64
	legalExtras                       map[cricket.Extra]float64
	illegalExtras                     map[cricket.Extra]float64
	bowlers                           map[BowlerKey]map[string]float64
	toss                              map[TossKey]*binary
	tossAll                           binary
}

// NewBuilder returns a Builder that adds alpha pseudo-counts to every
// outcome in the default support.
func NewBuilder(alpha float64) *Builder {
	if alpha < 0 {
		alpha = 0
	}
	return &Builder{
		alpha:         alpha,
		runs:          make(map[int]float64),
		dismissals:    make(map[cricket.DismissalType]float64),
		legalExtras:   make(map[cricket.Extra]float64),
		illegalExtras: make(map[cricket.Extra]float64),
		bowlers:       make(map[BowlerKey]map[string]float64),
		toss:          make(map[TossKey]*binary),
	}
}

// ObserveDelivery counts one historical ball.
func (b *Builder) ObserveDelivery(o DeliveryObservation) {
	out := o.Outcome
	if o.Bowler != "" && o.Over >= 0 && o.Over < cricket.MaxOvers {
		key := BowlerKey{Team: o.BowlingTeam, Over: o.Over}
		m := b.bowlers[key]
		if m == nil {
			m = make(map[string]float64)
			b.bowlers[key] = m
		}
		m[o.Bowler]++
	}

	b.legal.add(out.Legal)
	if !out.Legal {
		b.illegalExtras[out.Extra]++
		if out.Extra.Type == cricket.ExtraNoBall {
			b.runs[out.Runs]++
		}
		return
	}

	b.wicket.add(out.Wicket)
	if out.Wicket {
		b.dismissals[out.Dismissal]++
		if out.Dismissal == cricket.DismissalRunOut {
			b.direct.add(out.DirectRunOut)
			b.nonStriker.add(out.NonStrikerOut)
		}
		return
	}
	b.legalExtras[out.Extra]++
	if out.Extra.Type == cricket.ExtraNone {
		b.runs[out.Runs]++
	}
}

// ObserveToss counts one historical toss decision.
func (b *Builder) ObserveToss(o TossObservation) {
	key := TossKey{Venue: o.Venue, TossWinner: o.Winner}
	t := b.toss[key]
	if t == nil {
		t = &binary{}
		b.toss[key] = t
	}
	bat := o.Decision == cricket.TossBat
	t.add(bat)
	b.tossAll.add(bat)
}

// Build turns the counts into a validated Catalog.
func (b *Builder) Build() (*Catalog, error) {
	runs, err := smoothed(b.runs, defaultRuns, b.alpha, cmp.Compare[int])
	if err != nil {
		return nil, err
	}
	dismissals, err := smoothed(b.dismissals, defaultDismissals, b.alpha, cmp.Compare[cricket.DismissalType])
	if err != nil {
		return nil, err
	}
	legalExtras, err := smoothed(b.legalExtras, defaultLegalExtras, b.alpha, compareExtra)
	if err != nil {
		return nil, err
	}
	illegalExtras, err := smoothed(b.illegalExtras, defaultIllegalExtras, b.alpha, compareExtra)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Legal:            b.legal.estimate(b.alpha),
		Wicket:           b.wicket.estimate(b.alpha),
		DirectRunOut:     b.direct.estimate(b.alpha),
		NonStrikerRunOut: b.nonStriker.estimate(b.alpha),
		Runs:             runs,
		Dismissals:       dismissals,
		LegalExtras:      legalExtras,
		IllegalExtras:    illegalExtras,
		Bowlers:          make(map[BowlerKey]Distribution[string], len(b.bowlers)),
		Toss:             make(map[TossKey]Bernoulli, len(b.toss)),
		TossFallback:     b.tossAll.estimate(b.alpha),
	}
	for key, counts := range b.bowlers {
		d, err := smoothed(counts, nil, 0, cmp.Compare[string])
		if err != nil {
			return nil, err
		}
		opts.Bowlers[key] = d
	}
	for key, t := range b.toss {
		opts.Toss[key] = t.estimate(b.alpha)
	}
	return New(opts)
}

func compareExtra(a, b cricket.Extra) int {
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	return cmp.Compare(a.Runs, b.Runs)
}

// smoothed sorts the support so that index order, and therefore sampling,
// does not depend on map iteration order.
func smoothed[T comparable](counts map[T]float64, support []T, alpha float64, order func(a, b T) int) (Distribution[T], error) {
	weights := make(map[T]float64, len(counts)+len(support))
	for _, k := range support {
		weights[k] += alpha
	}
	for k, v := range counts {
		weights[k] += v
	}
	keys := make([]T, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, order)
	ws := make([]float64, len(keys))
	for i, k := range keys {
		ws[i] = weights[k]
	}
	return FromWeights(keys, ws)
}
