// Package reward turns simulated ball logs into per-player fantasy points.
package reward

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
)

// Role a delta is credited under.
type Role string

const (
	RoleBatting  Role = "batting"
	RoleBowling  Role = "bowling"
	RoleFielding Role = "fielding"
)

// Delta is a points change for one player.
type Delta struct {
	Player string
	Team   string
	Role   Role
	Points decimal.Decimal
}

// Scorer maps one delivery to point deltas.
type Scorer interface {
	Score(b engine.BallRecord) []Delta
}

// LineScorer is implemented by scorers that also award match-level bonuses
// (milestones, hauls, maidens) once a player's match line is known.
type LineScorer interface {
	ScoreLine(l Line) []Delta
}

// Line is one player's contribution to one match.
type Line struct {
	Scenario int
	MatchKey int64
	Player   string
	Team     string

	Batted     bool
	Runs       int
	BallsFaced int
	Fours      int
	Sixes      int
	Out        bool

	BallsBowled  int
	RunsConceded int
	Wickets      int
	Maidens      int

	Catches   int
	Stumpings int
	RunOuts   int
}

// PlayerScenarioPoints is a player's total over all matches of one scenario.
type PlayerScenarioPoints struct {
	Scenario int             `json:"scenario"`
	Player   string          `json:"player"`
	Team     string          `json:"team"`
	Matches  int             `json:"matches"`
	Batting  decimal.Decimal `json:"batting"`
	Bowling  decimal.Decimal `json:"bowling"`
	Fielding decimal.Decimal `json:"fielding"`
	Total    decimal.Decimal `json:"total"`
}

func (p *PlayerScenarioPoints) add(d Delta) {
	switch d.Role {
	case RoleBatting:
		p.Batting = p.Batting.Add(d.Points)
	case RoleBowling:
		p.Bowling = p.Bowling.Add(d.Points)
	case RoleFielding:
		p.Fielding = p.Fielding.Add(d.Points)
	}
	p.Total = p.Total.Add(d.Points)
}

type lineKey struct {
	scenario int
	match    int64
	player   string
}

type overKey struct {
	match  int64
	inning int
	over   int
}

type overLine struct {
	bowler   string
	scenario int
	legal    int
	conceded int
}

type pointsKey struct {
	scenario int
	player   string
}

// Aggregate scores every ball and sums the deltas per player per scenario.
// Output is ordered by scenario, then player.
func Aggregate(balls []engine.BallRecord, s Scorer) []PlayerScenarioPoints {
	lines := make(map[lineKey]*Line)
	overs := make(map[overKey]*overLine)
	points := make(map[pointsKey]*PlayerScenarioPoints)

	line := func(b engine.BallRecord, player, team string) *Line {
		k := lineKey{b.Scenario, b.MatchKey, player}
		l := lines[k]
		if l == nil {
			l = &Line{Scenario: b.Scenario, MatchKey: b.MatchKey, Player: player, Team: team}
			lines[k] = l
		}
		return l
	}
	credit := func(scenario int, d Delta) {
		k := pointsKey{scenario, d.Player}
		p := points[k]
		if p == nil {
			p = &PlayerScenarioPoints{Scenario: scenario, Player: d.Player, Team: d.Team}
			points[k] = p
		}
		p.add(d)
	}

	for _, b := range balls {
		for _, d := range s.Score(b) {
			credit(b.Scenario, d)
		}

		extra := cricket.Extra{Type: b.ExtraType, Runs: b.Extras}
		striker := line(b, b.Striker, b.BattingTeam)
		line(b, b.NonStriker, b.BattingTeam).Batted = true
		striker.Batted = true
		if b.ExtraType != cricket.ExtraWide {
			striker.BallsFaced++
			striker.Runs += b.Runs
			switch b.Runs {
			case 4:
				striker.Fours++
			case 6:
				striker.Sixes++
			}
		}

		bowler := line(b, b.Bowler, b.BowlingTeam)
		conceded := b.Runs
		if extra.BowlerConceded() {
			conceded += b.Extras
		}
		bowler.RunsConceded += conceded
		if b.IsLegal {
			bowler.BallsBowled++
		}
		ok := overKey{b.MatchKey, b.Inning, b.Over}
		o := overs[ok]
		if o == nil {
			o = &overLine{bowler: b.Bowler, scenario: b.Scenario}
			overs[ok] = o
		}
		o.conceded += conceded
		if b.IsLegal {
			o.legal++
		}

		if !b.IsWicket {
			continue
		}
		line(b, b.PlayerOut, b.BattingTeam).Out = true
		if b.Dismissal.CreditsBowler() {
			bowler.Wickets++
		}
		if b.Fielder == "" {
			continue
		}
		f := line(b, b.Fielder, b.BowlingTeam)
		switch b.Dismissal {
		case cricket.DismissalCaught, cricket.DismissalCaughtAndBowled:
			f.Catches++
		case cricket.DismissalStumped:
			f.Stumpings++
		case cricket.DismissalRunOut:
			f.RunOuts++
		}
	}

	for ok, o := range overs {
		if o.legal == cricket.BallsPerOver && o.conceded == 0 {
			lines[lineKey{o.scenario, ok.match, o.bowler}].Maidens++
		}
	}

	ls, hasLines := s.(LineScorer)
	for _, l := range lines {
		if hasLines {
			for _, d := range ls.ScoreLine(*l) {
				credit(l.Scenario, d)
			}
		}
		k := pointsKey{l.Scenario, l.Player}
		p := points[k]
		if p == nil {
			p = &PlayerScenarioPoints{Scenario: l.Scenario, Player: l.Player, Team: l.Team}
			points[k] = p
		}
		p.Matches++
	}

	out := make([]PlayerScenarioPoints, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b PlayerScenarioPoints) int {
		if c := cmp.Compare(a.Scenario, b.Scenario); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	return out
}

// PlayerSummary is a player's points distribution across scenarios.
type PlayerSummary struct {
	Player    string          `json:"player"`
	Team      string          `json:"team"`
	Scenarios int             `json:"scenarios"`
	Mean      decimal.Decimal `json:"mean"`
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
}

// Summarize collapses per-scenario points into one row per player. A player
// absent from some of the scenarios scores zero in them. Output is ordered by
// mean descending, then player.
func Summarize(points []PlayerScenarioPoints, scenarios int) []PlayerSummary {
	if scenarios <= 0 {
		return nil
	}
	type acc struct {
		PlayerSummary
		sum decimal.Decimal
	}
	byPlayer := make(map[string]*acc)
	for _, p := range points {
		a := byPlayer[p.Player]
		if a == nil {
			a = &acc{PlayerSummary: PlayerSummary{Player: p.Player, Team: p.Team, Min: p.Total, Max: p.Total}}
			byPlayer[p.Player] = a
		}
		a.Scenarios++
		a.sum = a.sum.Add(p.Total)
		a.Min = decimal.Min(a.Min, p.Total)
		a.Max = decimal.Max(a.Max, p.Total)
	}

	n := decimal.NewFromInt(int64(scenarios))
	out := make([]PlayerSummary, 0, len(byPlayer))
	for _, a := range byPlayer {
		if a.Scenarios < scenarios {
			a.Min = decimal.Min(a.Min, decimal.Zero)
			a.Max = decimal.Max(a.Max, decimal.Zero)
		}
		a.Mean = a.sum.DivRound(n, 4)
		out = append(out, a.PlayerSummary)
	}
	slices.SortFunc(out, func(a, b PlayerSummary) int {
		if c := b.Mean.Cmp(a.Mean); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	return out
}
