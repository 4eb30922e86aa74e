package bracket

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog/catalogtest"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
)

var teams = []string{"A", "B", "C", "D"}

// roundRobin returns the six group fixtures of four teams plus the playoffs.
func roundRobin() *Template {
	t := &Template{Name: "test", Teams: teams, Rosters: make(map[string][]string)}
	for _, team := range teams {
		t.Rosters[team] = catalogtest.XI(team)
	}
	id := 1
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			t.Fixtures = append(t.Fixtures, TemplateFixture{ID: id, Stage: cricket.StageGroup, Venue: "Eden", Team1: teams[i], Team2: teams[j]})
			id++
		}
	}
	for _, st := range []cricket.Stage{cricket.StageQualifier1, cricket.StageEliminator, cricket.StageQualifier2, cricket.StageFinal} {
		t.Fixtures = append(t.Fixtures, TemplateFixture{ID: id, Stage: st, Venue: "Eden"})
		id++
	}
	return t
}

func universe() *Universe {
	var players []string
	for _, team := range teams {
		players = append(players, catalogtest.XI(team)...)
	}
	return NewUniverse([]string{"Eden"}, teams, players)
}

func newSimulator(scorer reward.Scorer) *Simulator {
	return &Simulator{
		Engine: &engine.Simulator{
			Catalog: catalogtest.Catalog(teams...),
			Seed:    2024,
			Workers: 3,
			Logger:  zerolog.Nop(),
		},
		MaxScenarios: 10,
		Scorer:       scorer,
		Logger:       zerolog.Nop(),
	}
}

func standingsWithWins(wins map[string]int) []TeamStanding {
	rows := make([]TeamStanding, 0, len(teams))
	for i, team := range teams {
		rows = append(rows, TeamStanding{Team: team, Seed: i + 1, Won: wins[team]})
	}
	return rows
}

func TestRankScenarioExample(t *testing.T) {
	tests := []struct {
		scenario int
		wins     map[string]int
		want     Seeds
	}{
		{0, map[string]int{"A": 3, "B": 2, "C": 1, "D": 0}, Seeds{"A", "B", "C", "D"}},
		{1, map[string]int{"A": 1, "B": 3, "C": 2, "D": 0}, Seeds{"B", "C", "A", "D"}},
	}
	for _, tt := range tests {
		got := Rank(tt.scenario, standingsWithWins(tt.wins))
		if got.Seeds != tt.want {
			t.Errorf("scenario %d: seeds %v, want %v", tt.scenario, got.Seeds, tt.want)
		}
		if got.Scenario != tt.scenario {
			t.Errorf("scenario = %d", got.Scenario)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	rows := standingsWithWins(map[string]int{"A": 2, "B": 2, "C": 2, "D": 0})
	// B has the best run rate; A and C are level and fall back to seed order.
	rows[1].RunsFor, rows[1].BallsFor = 200, 120
	rows[1].RunsAgainst, rows[1].BallsAgainst = 150, 120
	for _, i := range []int{0, 2} {
		rows[i].RunsFor, rows[i].BallsFor = 150, 120
		rows[i].RunsAgainst, rows[i].BallsAgainst = 150, 120
	}
	got := Rank(0, rows)
	if want := (Seeds{"B", "A", "C", "D"}); got.Seeds != want {
		t.Fatalf("seeds %v, want %v", got.Seeds, want)
	}
	if got.Table[0].NRR != 2.5 {
		t.Fatalf("B nrr = %v, want 2.5", got.Table[0].NRR)
	}

	reversed := []TeamStanding{rows[3], rows[2], rows[1], rows[0]}
	if again := Rank(0, reversed); again.Seeds != got.Seeds {
		t.Fatalf("ranking depends on input order: %v vs %v", again.Seeds, got.Seeds)
	}
}

func TestTableCountsAllOutAsFullQuota(t *testing.T) {
	tbl := newTable(0, teams)
	tbl.record("A",
		engine.Innings{BattingTeam: "A", BowlingTeam: "B", Runs: 150, Wickets: 6, Balls: 120},
		engine.Innings{BattingTeam: "B", BowlingTeam: "A", Runs: 90, Wickets: 10, Balls: 60},
	)
	b := tbl.rows["B"]
	if b.BallsFor != cricket.InningsBalls || b.Lost != 1 || b.Played != 1 {
		t.Fatalf("B = %+v", *b)
	}
	if a := tbl.rows["A"]; a.Won != 1 || a.BallsAgainst != cricket.InningsBalls || a.RunsAgainst != 90 {
		t.Fatalf("A = %+v", *a)
	}
}

func TestMatchKeysDistinct(t *testing.T) {
	const maxScenarios = 100
	seen := make(map[int64]bool)
	for base := 1; base <= 74; base++ {
		for sc := 0; sc < maxScenarios; sc++ {
			k := MatchKey(base, sc, maxScenarios)
			if seen[k] {
				t.Fatalf("key %d repeated at base %d scenario %d", k, base, sc)
			}
			seen[k] = true
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Template)
		scenarios int
		want      error
	}{
		{"valid", func(*Template) {}, 5, nil},
		{"too many scenarios", func(*Template) {}, 11, ErrTooManyScenarios},
		{"no scenarios", func(*Template) {}, 0, ErrTooManyScenarios},
		{"unknown venue", func(t *Template) { t.Fixtures[2].Venue = "Lords" }, 5, ErrUnknownVenue},
		{"unknown fixture team", func(t *Template) { t.Fixtures[0].Team2 = "Z" }, 5, ErrUnknownTeam},
		{"unknown player", func(t *Template) { t.Rosters["C"][4] = "ghost" }, 5, ErrUnknownPlayer},
		{"short roster", func(t *Template) { t.Rosters["D"] = t.Rosters["D"][:10] }, 5, ErrInvalidRoster},
		{"player in two rosters", func(t *Template) { t.Rosters["B"][0] = "A-01" }, 5, ErrInvalidRoster},
		{"duplicate fixture", func(t *Template) { t.Fixtures[1].ID = t.Fixtures[0].ID }, 5, ErrDuplicateFixture},
		{"missing final", func(t *Template) { t.Fixtures = t.Fixtures[:len(t.Fixtures)-1] }, 5, ErrIncompletePlayoffs},
		{"two eliminators", func(t *Template) { t.Fixtures[len(t.Fixtures)-2].Stage = cricket.StageEliminator }, 5, ErrIncompletePlayoffs},
		{"three teams", func(t *Template) { t.Teams = t.Teams[:3] }, 5, ErrInvalidTemplate},
		{"bad stage", func(t *Template) { t.Fixtures[0].Stage = "super8" }, 5, ErrInvalidTemplate},
		{"played playoff", func(t *Template) { t.Fixtures[len(t.Fixtures)-1].Winner = "A" }, 5, ErrInvalidTemplate},
		{"winner not playing", func(t *Template) { t.Fixtures[0].Winner = "D" }, 5, ErrUnknownTeam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := roundRobin()
			tt.mutate(tmpl)
			err := Validate(tmpl, universe(), tt.scenarios, 10)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
		})
	}
}

func TestValidateWithoutUniverse(t *testing.T) {
	tmpl := roundRobin()
	tmpl.Fixtures[0].Venue = "Anywhere"
	if err := Validate(tmpl, nil, 1, 10); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSimulateBracketInvariants(t *testing.T) {
	const scenarios = 6
	out, err := newSimulator(reward.DefaultPoints()).Simulate(context.Background(), roundRobin(), scenarios)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(out.Fixtures) != scenarios*10 {
		t.Fatalf("fixtures = %d, want %d", len(out.Fixtures), scenarios*10)
	}

	keys := make(map[int64]bool)
	byStage := make(map[int]map[cricket.Stage]CompletedFixture)
	for _, f := range out.Fixtures {
		if keys[f.MatchKey] {
			t.Fatalf("duplicate match key %d", f.MatchKey)
		}
		keys[f.MatchKey] = true
		if !f.Simulated {
			t.Fatalf("fixture %d not simulated", f.FixtureID)
		}
		if byStage[f.Scenario] == nil {
			byStage[f.Scenario] = make(map[cricket.Stage]CompletedFixture)
		}
		if f.Stage != cricket.StageGroup {
			byStage[f.Scenario][f.Stage] = f
		}
	}

	for sc := 0; sc < scenarios; sc++ {
		st := out.Standings[sc]
		won := 0
		for _, row := range st.Table {
			won += row.Won
		}
		if won != 6 {
			t.Errorf("scenario %d: %d group wins, want 6", sc, won)
		}

		q1 := byStage[sc][cricket.StageQualifier1]
		el := byStage[sc][cricket.StageEliminator]
		q2 := byStage[sc][cricket.StageQualifier2]
		fin := byStage[sc][cricket.StageFinal]
		if q1.Team1 != st.Seeds[0] || q1.Team2 != st.Seeds[1] || el.Team1 != st.Seeds[2] || el.Team2 != st.Seeds[3] {
			t.Errorf("scenario %d: q1 %s v %s, eliminator %s v %s, seeds %v", sc, q1.Team1, q1.Team2, el.Team1, el.Team2, st.Seeds)
		}
		if q2.Team1 != q1.Loser || q2.Team2 != el.Winner {
			t.Errorf("scenario %d: q2 %s v %s, want %s v %s", sc, q2.Team1, q2.Team2, q1.Loser, el.Winner)
		}
		if fin.Team1 != q1.Winner || fin.Team2 != q2.Winner {
			t.Errorf("scenario %d: final %s v %s, want %s v %s", sc, fin.Team1, fin.Team2, q1.Winner, q2.Winner)
		}
		if out.Champions[sc] != fin.Winner {
			t.Errorf("scenario %d: champion %s, final winner %s", sc, out.Champions[sc], fin.Winner)
		}
	}

	for i := 1; i < len(out.Balls); i++ {
		if out.Balls[i-1].Scenario > out.Balls[i].Scenario {
			t.Fatalf("balls not grouped by scenario at %d", i)
		}
	}
	for _, b := range out.Balls {
		if !keys[b.MatchKey] {
			t.Fatalf("ball for unknown match key %d", b.MatchKey)
		}
	}

	total := 0
	for _, o := range out.ChampionOdds() {
		total += o.Titles
	}
	if total != scenarios {
		t.Errorf("titles = %d, want %d", total, scenarios)
	}
	if len(out.Points) == 0 || len(out.Players) == 0 {
		t.Error("no player rewards produced")
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	a, err := newSimulator(nil).Simulate(context.Background(), roundRobin(), 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newSimulator(nil).Simulate(context.Background(), roundRobin(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different outcomes")
	}
	if a.Points != nil {
		t.Fatal("rewards computed without a scorer")
	}
}

func TestSimulateKeepsPlayedFixtures(t *testing.T) {
	tmpl := roundRobin()
	tmpl.Fixtures[0].Winner = "B" // A v B
	tmpl.Fixtures[0].Team1Runs, tmpl.Fixtures[0].Team1Balls = 140, 120
	tmpl.Fixtures[0].Team2Runs, tmpl.Fixtures[0].Team2Balls = 141, 110

	out, err := newSimulator(nil).Simulate(context.Background(), tmpl, 2)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	for _, f := range out.Fixtures {
		if f.FixtureID != 1 {
			continue
		}
		if f.Simulated || f.Winner != "B" || f.Loser != "A" {
			t.Fatalf("played fixture = %+v", f)
		}
	}
	for _, b := range out.Balls {
		if b.MatchKey == MatchKey(1, b.Scenario, 10) {
			t.Fatalf("played fixture was simulated: %+v", b)
		}
	}
	for _, st := range out.Standings {
		for _, row := range st.Table {
			if row.Team == "B" && row.RunsFor < 141 {
				t.Fatalf("played runs missing from B: %+v", row)
			}
		}
	}
}

func TestSimulateRejectsInvalidTemplate(t *testing.T) {
	tmpl := roundRobin()
	tmpl.Fixtures = tmpl.Fixtures[:6]
	if _, err := newSimulator(nil).Simulate(context.Background(), tmpl, 2); !errors.Is(err, ErrIncompletePlayoffs) {
		t.Fatalf("got %v, want ErrIncompletePlayoffs", err)
	}
}

func TestLoadTemplate(t *testing.T) {
	raw := `
name: mini
teams: [A, B, C, D]
fixtures:
  - {id: 1, stage: group, venue: Eden, team1: A, team2: B, date: "2025-04-01"}
  - {id: 2, stage: group, venue: Eden, team1: C, team2: D, winner: D, team1_runs: 120, team1_balls: 120, team2_runs: 121, team2_balls: 100}
  - {id: 3, stage: qualifier1, venue: Eden}
  - {id: 4, stage: eliminator, venue: Eden}
  - {id: 5, stage: qualifier2, venue: Eden}
  - {id: 6, stage: final, venue: Eden}
rosters:
  A: [A-01, A-02, A-03, A-04, A-05, A-06, A-07, A-08, A-09, A-10, A-11]
  B: [B-01, B-02, B-03, B-04, B-05, B-06, B-07, B-08, B-09, B-10, B-11]
  C: [C-01, C-02, C-03, C-04, C-05, C-06, C-07, C-08, C-09, C-10, C-11]
  D: [D-01, D-02, D-03, D-04, D-05, D-06, D-07, D-08, D-09, D-10, D-11]
`
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if len(tmpl.Fixtures) != 6 || tmpl.Fixtures[1].Winner != "D" || tmpl.Fixtures[1].Team2Balls != 100 {
		t.Fatalf("template = %+v", tmpl)
	}
	if err := Validate(tmpl, universe(), 1, 10); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
