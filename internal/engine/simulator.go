package engine

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

// MatchSpec is one fixture instance inside one scenario.
type MatchSpec struct {
	Scenario int
	MatchKey int64
	BaseID   int
	Stage    cricket.Stage
	Venue    string
	Team1    string
	Team2    string
	// XI maps both team ids to their batting order.
	XI map[string][]string
}

func (s MatchSpec) validate() error {
	if s.Team1 == "" || s.Team2 == "" || s.Team1 == s.Team2 {
		return fmt.Errorf("%w: match %d teams %q v %q", ErrInvalidSpec, s.MatchKey, s.Team1, s.Team2)
	}
	for _, team := range []string{s.Team1, s.Team2} {
		if n := len(s.XI[team]); n != cricket.XISize {
			return fmt.Errorf("%w: match %d %s has %d players", ErrInvalidSpec, s.MatchKey, team, n)
		}
	}
	return nil
}

// BallRecord is one row of the ball-by-ball log.
type BallRecord struct {
	Scenario        int                   `json:"scenario"`
	MatchKey        int64                 `json:"match_key"`
	Inning          int                   `json:"inning"`
	Over            int                   `json:"over"`
	Ball            int                   `json:"ball"`
	LegalBall       int                   `json:"legal_ball"`
	BattingTeam     string                `json:"batting_team"`
	BowlingTeam     string                `json:"bowling_team"`
	Striker         string                `json:"striker"`
	NonStriker      string                `json:"non_striker"`
	Bowler          string                `json:"bowler"`
	Runs            int                   `json:"runs"`
	Extras          int                   `json:"extras"`
	ExtraType       cricket.ExtraType     `json:"extra_kind"`
	IsLegal         bool                  `json:"is_legal"`
	IsWicket        bool                  `json:"is_wicket"`
	Dismissal       cricket.DismissalType `json:"dismissal_kind"`
	PlayerOut       string                `json:"player_out"`
	Fielder         string                `json:"fielder"`
	DirectRunOut    bool                  `json:"direct_run_out"`
	PreviousTotal   int                   `json:"previous_total"`
	PreviousWickets int                   `json:"previous_wickets"`
	TargetRuns      int                   `json:"target_runs"`
	TargetBalls     int                   `json:"target_balls"`
}

// Run is the output of one Simulator.Run call.
type Run struct {
	Balls   []BallRecord
	Results []MatchResult
}

// Simulator plays batches of matches concurrently.
type Simulator struct {
	Catalog *catalog.Catalog
	Seed    uint64
	// Workers is the number of shards; zero means GOMAXPROCS.
	Workers int
	Logger  zerolog.Logger
}

type pair struct {
	spec    MatchSpec
	sampler *catalog.Sampler
	machine *Machine
	result  MatchResult
	balls   []BallRecord
}

// Run plays every spec to completion. Output is ordered by scenario, then
// match key, then delivery, and is identical for any worker count.
func (s *Simulator) Run(ctx context.Context, specs []MatchSpec) (*Run, error) {
	if s.Catalog == nil {
		return nil, fmt.Errorf("%w: no catalog", ErrInvalidSpec)
	}
	pairs := make([]*pair, 0, len(specs))
	seen := make(map[int64]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.MatchKey]; dup {
			return nil, fmt.Errorf("%w: duplicate match key %d", ErrInvalidSpec, spec.MatchKey)
		}
		seen[spec.MatchKey] = struct{}{}
		p, err := s.start(spec)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b *pair) int {
		if c := cmp.Compare(a.spec.Scenario, b.spec.Scenario); c != 0 {
			return c
		}
		return cmp.Compare(a.spec.MatchKey, b.spec.MatchKey)
	})

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(pairs))

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*len(pairs)/workers, (w+1)*len(pairs)/workers
		shard := pairs[lo:hi]
		g.Go(func() error { return s.runShard(gctx, shard) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Run{Results: make([]MatchResult, 0, len(pairs))}
	total := 0
	for _, p := range pairs {
		total += len(p.balls)
	}
	out.Balls = make([]BallRecord, 0, total)
	for _, p := range pairs {
		out.Balls = append(out.Balls, p.balls...)
		out.Results = append(out.Results, p.result)
	}

	s.Logger.Debug().
		Int("matches", len(pairs)).
		Int("balls", total).
		Int("workers", workers).
		Dur("elapsed", time.Since(started)).
		Msg("simulated match batch")
	return out, nil
}

// start samples the toss and the opening bowler and builds the machine.
func (s *Simulator) start(spec MatchSpec) (*pair, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	sampler := catalog.NewSampler(s.Catalog, s.Seed, uint64(spec.MatchKey))

	tossWinner, other := spec.Team1, spec.Team2
	if !sampler.Coin() {
		tossWinner, other = other, tossWinner
	}
	decision := cricket.TossField
	battingFirst, bowlingFirst := other, tossWinner
	if sampler.TossBats(spec.Venue, tossWinner) {
		decision = cricket.TossBat
		battingFirst, bowlingFirst = tossWinner, other
	}

	opener := sampler.PickBowler(bowlingFirst, 0, spec.XI[bowlingFirst], nil, "")
	m, err := NewMachine(spec, battingFirst, opener, sampler)
	if err != nil {
		return nil, err
	}
	return &pair{
		spec:    spec,
		sampler: sampler,
		machine: m,
		result:  MatchResult{TossWinner: tossWinner, TossDecision: decision},
		balls:   make([]BallRecord, 0, 2*cricket.InningsBalls+16),
	}, nil
}

// runShard advances its pairs in lock-step, one delivery per active pair per
// round, until every match is complete.
func (s *Simulator) runShard(ctx context.Context, shard []*pair) error {
	active := slices.Clone(shard)
	for len(active) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, p := range active {
			m := p.machine
			if m.State() == OverComplete {
				bowler := p.sampler.PickBowler(m.BowlingTeam(), m.Over(), m.BowlingXI(), m.OversBowled(), m.LastBowler())
				if err := m.ChangeOver(bowler); err != nil {
					return fmt.Errorf("match %d over %d: %w", p.spec.MatchKey, m.Over(), err)
				}
			}
			if rec, ok := m.AdvanceBall(p.sampler.Delivery()); ok {
				p.balls = append(p.balls, rec)
			}
		}

		next := active[:0]
		for _, p := range active {
			m := p.machine
			switch m.State() {
			case InningComplete:
				// The side that batted first bowls in inning 2.
				opener := p.sampler.PickBowler(m.BattingTeam(), 0, m.BattingXI(), nil, "")
				if err := m.SetInnings(2, opener); err != nil {
					return fmt.Errorf("match %d: %w", p.spec.MatchKey, err)
				}
				next = append(next, p)
			case MatchComplete:
				res := m.Result()
				res.TossWinner, res.TossDecision = p.result.TossWinner, p.result.TossDecision
				p.result = res
			default:
				next = append(next, p)
			}
		}
		active = next
	}
	return nil
}
