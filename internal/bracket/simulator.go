package bracket

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
)

// CompletedFixture is one fixture of one scenario with its result.
type CompletedFixture struct {
	Scenario     int                  `json:"scenario"`
	FixtureID    int                  `json:"fixture_id"`
	MatchKey     int64                `json:"match_key"`
	Stage        cricket.Stage        `json:"stage"`
	Venue        string               `json:"venue"`
	Date         string               `json:"date,omitempty"`
	Team1        string               `json:"team1"`
	Team2        string               `json:"team2"`
	TossWinner   string               `json:"toss_winner,omitempty"`
	TossDecision cricket.TossDecision `json:"toss_decision,omitempty"`
	Innings      [2]engine.Innings    `json:"innings"`
	Winner       string               `json:"winner"`
	Loser        string               `json:"loser"`
	Tied         bool                 `json:"tied"`
	Margin       string               `json:"margin,omitempty"`
	Simulated    bool                 `json:"simulated"`
}

// Outcome is everything one Simulate call produces.
type Outcome struct {
	Scenarios int
	Fixtures  []CompletedFixture
	Balls     []engine.BallRecord
	Standings []Standings
	// Champions holds the title winner of each scenario, indexed by scenario.
	Champions []string
	Points    []reward.PlayerScenarioPoints
	Players   []reward.PlayerSummary
}

// ChampionOdds is a team's share of titles across scenarios.
type ChampionOdds struct {
	Team        string  `json:"team"`
	Titles      int     `json:"titles"`
	Probability float64 `json:"probability"`
}

// ChampionOdds counts titles per team, most titles first.
func (o *Outcome) ChampionOdds() []ChampionOdds {
	titles := make(map[string]int)
	for _, team := range o.Champions {
		titles[team]++
	}
	return OddsFromTitles(titles, o.Scenarios)
}

// OddsFromTitles turns title counts into probabilities, most titles first
// and then by team.
func OddsFromTitles(titles map[string]int, scenarios int) []ChampionOdds {
	out := make([]ChampionOdds, 0, len(titles))
	for team, n := range titles {
		out = append(out, ChampionOdds{Team: team, Titles: n, Probability: float64(n) / float64(scenarios)})
	}
	slices.SortFunc(out, func(a, b ChampionOdds) int {
		if c := cmp.Compare(b.Titles, a.Titles); c != 0 {
			return c
		}
		return cmp.Compare(a.Team, b.Team)
	})
	return out
}

// Simulator plays a Template across scenarios.
type Simulator struct {
	Engine       *engine.Simulator
	MaxScenarios int
	// Scorer turns the ball log into player points; nil skips rewards.
	Scorer reward.Scorer
	Logger zerolog.Logger
}

var stageOrder = map[cricket.Stage]int{
	cricket.StageGroup:      0,
	cricket.StageQualifier1: 1,
	cricket.StageEliminator: 2,
	cricket.StageQualifier2: 3,
	cricket.StageFinal:      4,
}

// Simulate runs the group stage, ranks every scenario, then plays Qualifier 1
// and the Eliminator, Qualifier 2 and the Final. Each stage starts only after
// the previous one is complete in every scenario.
func (s *Simulator) Simulate(ctx context.Context, t *Template, scenarios int) (*Outcome, error) {
	if err := Validate(t, nil, scenarios, s.MaxScenarios); err != nil {
		return nil, err
	}

	out := &Outcome{
		Scenarios: scenarios,
		Standings: make([]Standings, scenarios),
		Champions: make([]string, scenarios),
	}
	tables := make([]*table, scenarios)
	var group []engine.MatchSpec
	fixtures := make(map[int]TemplateFixture, len(t.Fixtures))
	for _, f := range t.Fixtures {
		fixtures[f.ID] = f
	}

	for sc := 0; sc < scenarios; sc++ {
		tables[sc] = newTable(sc, t.Teams)
		for _, f := range t.Fixtures {
			if f.Stage != cricket.StageGroup {
				continue
			}
			if f.Played() {
				tables[sc].recordPlayed(f)
				out.Fixtures = append(out.Fixtures, s.played(f, sc))
				continue
			}
			group = append(group, s.spec(t, f, sc, f.Team1, f.Team2))
		}
	}

	results, err := s.play(ctx, out, fixtures, "group stage", group)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		tables[r.Scenario].record(r.Winner, r.Innings[:]...)
	}
	for sc, tbl := range tables {
		out.Standings[sc] = tbl.rank()
	}

	q1, _ := t.Playoff(cricket.StageQualifier1)
	el, _ := t.Playoff(cricket.StageEliminator)
	q2, _ := t.Playoff(cricket.StageQualifier2)
	fin, _ := t.Playoff(cricket.StageFinal)

	specs := make([]engine.MatchSpec, 0, 2*scenarios)
	for sc := 0; sc < scenarios; sc++ {
		seeds := out.Standings[sc].Seeds
		specs = append(specs,
			s.spec(t, q1, sc, seeds[0], seeds[1]),
			s.spec(t, el, sc, seeds[2], seeds[3]),
		)
	}
	first, err := s.play(ctx, out, fixtures, "qualifier 1 and eliminator", specs)
	if err != nil {
		return nil, err
	}
	byKey := indexResults(first)

	specs = specs[:0]
	for sc := 0; sc < scenarios; sc++ {
		qr := byKey[MatchKey(q1.ID, sc, s.MaxScenarios)]
		er := byKey[MatchKey(el.ID, sc, s.MaxScenarios)]
		specs = append(specs, s.spec(t, q2, sc, qr.Loser, er.Winner))
	}
	second, err := s.play(ctx, out, fixtures, "qualifier 2", specs)
	if err != nil {
		return nil, err
	}
	for k, r := range indexResults(second) {
		byKey[k] = r
	}

	specs = specs[:0]
	for sc := 0; sc < scenarios; sc++ {
		qr := byKey[MatchKey(q1.ID, sc, s.MaxScenarios)]
		q2r := byKey[MatchKey(q2.ID, sc, s.MaxScenarios)]
		specs = append(specs, s.spec(t, fin, sc, qr.Winner, q2r.Winner))
	}
	finals, err := s.play(ctx, out, fixtures, "final", specs)
	if err != nil {
		return nil, err
	}
	for _, r := range finals {
		out.Champions[r.Scenario] = r.Winner
	}

	slices.SortFunc(out.Fixtures, func(a, b CompletedFixture) int {
		if c := cmp.Compare(a.Scenario, b.Scenario); c != 0 {
			return c
		}
		if c := cmp.Compare(stageOrder[a.Stage], stageOrder[b.Stage]); c != 0 {
			return c
		}
		return cmp.Compare(a.FixtureID, b.FixtureID)
	})
	slices.SortStableFunc(out.Balls, func(a, b engine.BallRecord) int {
		return cmp.Compare(a.Scenario, b.Scenario)
	})

	if s.Scorer != nil {
		out.Points = reward.Aggregate(out.Balls, s.Scorer)
		out.Players = reward.Summarize(out.Points, scenarios)
	}
	return out, nil
}

func (s *Simulator) spec(t *Template, f TemplateFixture, scenario int, team1, team2 string) engine.MatchSpec {
	return engine.MatchSpec{
		Scenario: scenario,
		MatchKey: MatchKey(f.ID, scenario, s.MaxScenarios),
		BaseID:   f.ID,
		Stage:    f.Stage,
		Venue:    f.Venue,
		Team1:    team1,
		Team2:    team2,
		XI:       t.Rosters,
	}
}

func (s *Simulator) played(f TemplateFixture, scenario int) CompletedFixture {
	loser := f.Team1
	if f.Winner == f.Team1 {
		loser = f.Team2
	}
	return CompletedFixture{
		Scenario:  scenario,
		FixtureID: f.ID,
		MatchKey:  MatchKey(f.ID, scenario, s.MaxScenarios),
		Stage:     f.Stage,
		Venue:     f.Venue,
		Date:      f.Date,
		Team1:     f.Team1,
		Team2:     f.Team2,
		Innings: [2]engine.Innings{
			{BattingTeam: f.Team1, BowlingTeam: f.Team2, Runs: f.Team1Runs, Balls: f.Team1Balls},
			{BattingTeam: f.Team2, BowlingTeam: f.Team1, Runs: f.Team2Runs, Balls: f.Team2Balls},
		},
		Winner: f.Winner,
		Loser:  loser,
	}
}

// play runs one barrier-delimited batch and appends its fixtures and balls
// to out.
func (s *Simulator) play(ctx context.Context, out *Outcome, fixtures map[int]TemplateFixture, label string, specs []engine.MatchSpec) ([]engine.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()
	run, err := s.Engine.Run(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	bases := make(map[int64]int, len(specs))
	for _, sp := range specs {
		bases[sp.MatchKey] = sp.BaseID
	}
	for _, r := range run.Results {
		f := fixtures[bases[r.MatchKey]]
		out.Fixtures = append(out.Fixtures, CompletedFixture{
			Scenario:     r.Scenario,
			FixtureID:    f.ID,
			MatchKey:     r.MatchKey,
			Stage:        f.Stage,
			Venue:        r.Venue,
			Date:         f.Date,
			Team1:        r.Team1,
			Team2:        r.Team2,
			TossWinner:   r.TossWinner,
			TossDecision: r.TossDecision,
			Innings:      r.Innings,
			Winner:       r.Winner,
			Loser:        r.Loser,
			Tied:         r.Tied,
			Margin:       r.Margin,
			Simulated:    true,
		})
	}
	out.Balls = append(out.Balls, run.Balls...)

	s.Logger.Info().
		Str("stage", label).
		Int("matches", len(specs)).
		Int("balls", len(run.Balls)).
		Dur("elapsed", time.Since(started)).
		Msg("stage simulated")
	return run.Results, nil
}

func indexResults(rs []engine.MatchResult) map[int64]engine.MatchResult {
	m := make(map[int64]engine.MatchResult, len(rs))
	for _, r := range rs {
		m[r.MatchKey] = r
	}
	return m
}
