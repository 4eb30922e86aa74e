package catalog

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// MaxBowlerDraws bounds how often a rejected bowler draw is retried before
// the deterministic fallback is used.
const MaxBowlerDraws = 8

// Sampler draws concrete events from a Catalog. One Sampler belongs to one
// (scenario, match) pair and is not safe for concurrent use.
type Sampler struct {
	cat *Catalog
	src *pcgSource
	rng *rand.Rand

	runs          distuv.Categorical
	dismissals    distuv.Categorical
	legalExtras   distuv.Categorical
	illegalExtras distuv.Categorical
	bowlers       map[BowlerKey]distuv.Categorical
}

// pcgSource exposes a PCG stream through the single-word Seed method that
// gonum's distuv sources require. Both views share one stream.
type pcgSource struct {
	pcg *rand.PCG
}

func (s *pcgSource) Uint64() uint64 { return s.pcg.Uint64() }

func (s *pcgSource) Seed(seed uint64) { s.pcg.Seed(seed, 0) }

// NewSampler seeds a PCG stream from the two seed words. The same catalog and
// seeds always produce the same sequence of draws.
func NewSampler(cat *Catalog, seed1, seed2 uint64) *Sampler {
	pcg := rand.NewPCG(seed1, seed2)
	src := &pcgSource{pcg: pcg}
	return &Sampler{
		cat:           cat,
		src:           src,
		rng:           rand.New(pcg),
		runs:          distuv.NewCategorical(cat.runs.probs, src),
		dismissals:    distuv.NewCategorical(cat.dismissals.probs, src),
		legalExtras:   distuv.NewCategorical(cat.legalExtras.probs, src),
		illegalExtras: distuv.NewCategorical(cat.illegalExtras.probs, src),
		bowlers:       make(map[BowlerKey]distuv.Categorical),
	}
}

// Sample returns n independent draws from d using the sampler's stream.
func Sample[T comparable](s *Sampler, d Distribution[T], n int) []T {
	if d.Empty() || n <= 0 {
		return nil
	}
	c := distuv.NewCategorical(d.probs, s.src)
	out := make([]T, n)
	for i := range out {
		out[i] = d.outcomes[int(c.Rand())]
	}
	return out
}

func (s *Sampler) flip(b Bernoulli) bool {
	return distuv.Bernoulli{P: b.P, Src: s.src}.Rand() == 1
}

// Delivery samples one ball: legality first, then either the illegal extra
// (plus bat runs off a no-ball) or wicket/extras/runs for a legal ball.
func (s *Sampler) Delivery() cricket.Outcome {
	if !s.flip(s.cat.legal) {
		o := cricket.Outcome{Extra: s.cat.illegalExtras.outcomes[int(s.illegalExtras.Rand())]}
		if o.Extra.Type == cricket.ExtraNoBall {
			o.Runs = s.cat.runs.outcomes[int(s.runs.Rand())]
		}
		return o
	}

	o := cricket.Outcome{Legal: true}
	if s.flip(s.cat.wicket) {
		o.Wicket = true
		o.Dismissal = s.cat.dismissals.outcomes[int(s.dismissals.Rand())]
		if o.Dismissal == cricket.DismissalRunOut {
			o.DirectRunOut = s.flip(s.cat.directRunOut)
			o.NonStrikerOut = s.flip(s.cat.nonStrikerRunOut)
		}
		return o
	}

	o.Extra = s.cat.legalExtras.outcomes[int(s.legalExtras.Rand())]
	if o.Extra.Type == cricket.ExtraNone {
		o.Runs = s.cat.runs.outcomes[int(s.runs.Rand())]
	}
	return o
}

// TossBats reports whether the toss winner elects to bat first.
func (s *Sampler) TossBats(venue, winner string) bool {
	return s.flip(s.cat.TossDecision(TossKey{Venue: venue, TossWinner: winner}))
}

// PickBowler selects the bowler for the given over. A draw is accepted only
// if the player is in the XI, is under the over quota and did not bowl the
// previous over. When the context is unknown or every draw is rejected the
// choice falls back to FallbackBowler.
func (s *Sampler) PickBowler(team string, over int, xi []string, overs map[string]int, previous string) string {
	key := BowlerKey{Team: team, Over: over}
	if dist, ok := s.cat.Bowler(key); ok {
		c, ok := s.bowlers[key]
		if !ok {
			c = distuv.NewCategorical(dist.probs, s.src)
			s.bowlers[key] = c
		}
		for i := 0; i < MaxBowlerDraws; i++ {
			p := dist.outcomes[int(c.Rand())]
			if p != previous && overs[p] < cricket.MaxOversPerBowler && contains(xi, p) {
				return p
			}
		}
	}
	return FallbackBowler(xi, overs, previous)
}

// FallbackBowler walks the XI in reverse batting order (bowling order) and
// returns the last player under quota, skipping the previous over's bowler.
// It returns "" only if nobody is eligible, which cannot happen with a full XI.
func FallbackBowler(xi []string, overs map[string]int, previous string) string {
	for i := len(xi) - 1; i >= 0; i-- {
		p := xi[i]
		if p != previous && overs[p] < cricket.MaxOversPerBowler {
			return p
		}
	}
	return ""
}

// Fielder picks a uniformly random member of xi other than exclude.
func (s *Sampler) Fielder(xi []string, exclude string) string {
	candidates := make([]string, 0, len(xi))
	for _, p := range xi {
		if p != exclude {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// Coin is a fair coin flip (toss call, super-over decider).
func (s *Sampler) Coin() bool {
	return s.rng.IntN(2) == 0
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
