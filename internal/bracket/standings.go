package bracket

import (
	"cmp"
	"slices"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
)

// TeamStanding is one row of a group table.
type TeamStanding struct {
	Team         string  `json:"team"`
	Seed         int     `json:"seed"`
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	RunsFor      int     `json:"runs_for"`
	BallsFor     int     `json:"balls_for"`
	RunsAgainst  int     `json:"runs_against"`
	BallsAgainst int     `json:"balls_against"`
	NRR          float64 `json:"nrr"`
}

func (s *TeamStanding) netRunRate() float64 {
	rate := func(runs, balls int) float64 {
		if balls == 0 {
			return 0
		}
		return float64(runs) * cricket.BallsPerOver / float64(balls)
	}
	return rate(s.RunsFor, s.BallsFor) - rate(s.RunsAgainst, s.BallsAgainst)
}

// Seeds are the top four teams of a scenario in rank order.
type Seeds [4]string

// Standings is the ranked group table of one scenario.
type Standings struct {
	Scenario int            `json:"scenario"`
	Table    []TeamStanding `json:"table"`
	Seeds    Seeds          `json:"seeds"`
}

type table struct {
	scenario int
	rows     map[string]*TeamStanding
}

func newTable(scenario int, teams []string) *table {
	t := &table{scenario: scenario, rows: make(map[string]*TeamStanding, len(teams))}
	for i, team := range teams {
		t.rows[team] = &TeamStanding{Team: team, Seed: i + 1}
	}
	return t
}

// record adds one match. Balls faced by a side that was bowled out count as
// the full quota.
func (t *table) record(winner string, innings ...engine.Innings) {
	for _, in := range innings {
		balls := in.Balls
		if in.Wickets >= cricket.MaxWickets {
			balls = cricket.InningsBalls
		}
		bat, bowl := t.rows[in.BattingTeam], t.rows[in.BowlingTeam]
		if bat == nil || bowl == nil {
			continue
		}
		bat.RunsFor += in.Runs
		bat.BallsFor += balls
		bowl.RunsAgainst += in.Runs
		bowl.BallsAgainst += balls
	}
	if len(innings) == 0 {
		return
	}
	first := innings[0]
	for _, team := range []string{first.BattingTeam, first.BowlingTeam} {
		row := t.rows[team]
		if row == nil {
			continue
		}
		row.Played++
		if team == winner {
			row.Won++
		} else {
			row.Lost++
		}
	}
}

// recordPlayed adds an already played template fixture.
func (t *table) recordPlayed(f TemplateFixture) {
	t.record(f.Winner,
		engine.Innings{BattingTeam: f.Team1, BowlingTeam: f.Team2, Runs: f.Team1Runs, Balls: f.Team1Balls},
		engine.Innings{BattingTeam: f.Team2, BowlingTeam: f.Team1, Runs: f.Team2Runs, Balls: f.Team2Balls},
	)
}

// Rank orders teams by wins, then net run rate, then template seed order.
func Rank(scenario int, rows []TeamStanding) Standings {
	ranked := slices.Clone(rows)
	for i := range ranked {
		ranked[i].NRR = ranked[i].netRunRate()
	}
	slices.SortFunc(ranked, func(a, b TeamStanding) int {
		if c := cmp.Compare(b.Won, a.Won); c != 0 {
			return c
		}
		if c := cmp.Compare(b.NRR, a.NRR); c != 0 {
			return c
		}
		return cmp.Compare(a.Seed, b.Seed)
	})
	s := Standings{Scenario: scenario, Table: ranked}
	for i := 0; i < len(s.Seeds) && i < len(ranked); i++ {
		s.Seeds[i] = ranked[i].Team
	}
	return s
}

func (t *table) rank() Standings {
	rows := make([]TeamStanding, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, *r)
	}
	return Rank(t.scenario, rows)
}
