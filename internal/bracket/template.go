// Package bracket replicates a tournament template into scenarios and plays
// the group stage and the four-team playoff through the match engine.
package bracket

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/validator"
)

var (
	ErrInvalidTemplate    = errors.New("bracket: invalid template")
	ErrUnknownVenue       = errors.New("bracket: unknown venue")
	ErrUnknownTeam        = errors.New("bracket: unknown team")
	ErrUnknownPlayer      = errors.New("bracket: unknown player")
	ErrTooManyScenarios   = errors.New("bracket: scenario count out of range")
	ErrInvalidRoster      = errors.New("bracket: invalid roster")
	ErrDuplicateFixture   = errors.New("bracket: duplicate fixture")
	ErrIncompletePlayoffs = errors.New("bracket: playoff stages incomplete")
)

// ValidationError reports the first template problem found.
type ValidationError struct {
	Field string
	Value string
	Err   error
	// Fields holds per-field messages from struct tag validation.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, field, value string) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// TemplateFixture is one match of the tournament. Playoff fixtures leave
// the teams empty; they are filled from the standings. A fixture with a
// Winner is already played: it counts in the standings and is not simulated.
// Played balls should be 120 for a side that was bowled out.
type TemplateFixture struct {
	ID         int           `yaml:"id" json:"id" validate:"gt=0"`
	Stage      cricket.Stage `yaml:"stage" json:"stage" validate:"oneof=group qualifier1 eliminator qualifier2 final"`
	Venue      string        `yaml:"venue" json:"venue" validate:"required"`
	Date       string        `yaml:"date" json:"date,omitempty"`
	Team1      string        `yaml:"team1" json:"team1,omitempty" validate:"required_if=Stage group"`
	Team2      string        `yaml:"team2" json:"team2,omitempty" validate:"required_if=Stage group"`
	Winner     string        `yaml:"winner,omitempty" json:"winner,omitempty"`
	Team1Runs  int           `yaml:"team1_runs,omitempty" json:"team1_runs,omitempty" validate:"gte=0"`
	Team1Balls int           `yaml:"team1_balls,omitempty" json:"team1_balls,omitempty" validate:"gte=0,lte=120"`
	Team2Runs  int           `yaml:"team2_runs,omitempty" json:"team2_runs,omitempty" validate:"gte=0"`
	Team2Balls int           `yaml:"team2_balls,omitempty" json:"team2_balls,omitempty" validate:"gte=0,lte=120"`
}

// Played reports whether the fixture already has a result.
func (f TemplateFixture) Played() bool { return f.Winner != "" }

// Template is the fixture list plus the master roster. The order of Teams is
// the seed order used as the last ranking tie-break.
type Template struct {
	Name     string              `yaml:"name" json:"name"`
	Teams    []string            `yaml:"teams" json:"teams" validate:"min=4,unique,dive,required"`
	Fixtures []TemplateFixture   `yaml:"fixtures" json:"fixtures" validate:"min=1,dive"`
	Rosters  map[string][]string `yaml:"rosters" json:"rosters" validate:"required"`
}

// LoadTemplate reads a YAML template from path.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture template: %w", err)
	}
	var t Template
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to parse fixture template: %w", err)
	}
	return &t, nil
}

// Playoff returns the fixture of the given playoff stage.
func (t *Template) Playoff(stage cricket.Stage) (TemplateFixture, bool) {
	for _, f := range t.Fixtures {
		if f.Stage == stage {
			return f, true
		}
	}
	return TemplateFixture{}, false
}

// Universe is the set of ids known to the historical store.
type Universe struct {
	Venues  map[string]struct{}
	Teams   map[string]struct{}
	Players map[string]struct{}
}

func set(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func NewUniverse(venues, teams, players []string) *Universe {
	return &Universe{Venues: set(venues), Teams: set(teams), Players: set(players)}
}

func (u *Universe) HasVenue(id string) bool {
	_, ok := u.Venues[id]
	return ok
}

func (u *Universe) HasTeam(id string) bool {
	_, ok := u.Teams[id]
	return ok
}

func (u *Universe) HasPlayer(id string) bool {
	_, ok := u.Players[id]
	return ok
}

// MatchKey derives a key unique across scenarios and fixtures as long as
// scenario < maxScenarios.
func MatchKey(baseID, scenario, maxScenarios int) int64 {
	return int64(baseID)*int64(maxScenarios) + int64(scenario)
}

var playoffStages = []cricket.Stage{
	cricket.StageQualifier1, cricket.StageEliminator, cricket.StageQualifier2, cricket.StageFinal,
}

// Validate checks t before any scenario work starts and returns the first
// problem as a *ValidationError. A nil universe skips the membership checks.
func Validate(t *Template, u *Universe, scenarios, maxScenarios int) error {
	if scenarios < 1 || scenarios > maxScenarios {
		return invalid(ErrTooManyScenarios, "scenarios", fmt.Sprintf("%d (max %d)", scenarios, maxScenarios))
	}
	if t == nil {
		return invalid(ErrInvalidTemplate, "template", "")
	}
	if err := validator.Struct(t); err != nil {
		return &ValidationError{Field: "template", Err: fmt.Errorf("%w: %v", ErrInvalidTemplate, err), Fields: validator.ParseError(err)}
	}

	teams := set(t.Teams)
	owner := make(map[string]string)
	for _, team := range t.Teams {
		if u != nil && !u.HasTeam(team) {
			return invalid(ErrUnknownTeam, "teams", team)
		}
		xi, ok := t.Rosters[team]
		if !ok || len(xi) != cricket.XISize {
			return invalid(ErrInvalidRoster, "rosters."+team, fmt.Sprintf("%d players", len(xi)))
		}
		for _, p := range xi {
			if u != nil && !u.HasPlayer(p) {
				return invalid(ErrUnknownPlayer, "rosters."+team, p)
			}
			if other, dup := owner[p]; dup {
				return invalid(ErrInvalidRoster, "rosters."+team, fmt.Sprintf("%s also listed for %s", p, other))
			}
			owner[p] = team
		}
	}
	for team := range t.Rosters {
		if _, ok := teams[team]; !ok {
			return invalid(ErrUnknownTeam, "rosters", team)
		}
	}

	ids := make(map[int]struct{}, len(t.Fixtures))
	stages := make(map[cricket.Stage]int)
	for _, f := range t.Fixtures {
		field := fmt.Sprintf("fixtures[%d]", f.ID)
		if _, dup := ids[f.ID]; dup {
			return invalid(ErrDuplicateFixture, field, "")
		}
		ids[f.ID] = struct{}{}
		stages[f.Stage]++
		if u != nil && !u.HasVenue(f.Venue) {
			return invalid(ErrUnknownVenue, field+".venue", f.Venue)
		}
		if f.Stage.Playoff() {
			if f.Played() {
				return invalid(ErrInvalidTemplate, field+".winner", f.Winner)
			}
			continue
		}
		for _, team := range []string{f.Team1, f.Team2} {
			if _, ok := teams[team]; !ok {
				return invalid(ErrUnknownTeam, field, team)
			}
		}
		if f.Team1 == f.Team2 {
			return invalid(ErrInvalidTemplate, field, f.Team1+" v "+f.Team2)
		}
		if f.Played() && f.Winner != f.Team1 && f.Winner != f.Team2 {
			return invalid(ErrUnknownTeam, field+".winner", f.Winner)
		}
	}
	for _, st := range playoffStages {
		if stages[st] != 1 {
			return invalid(ErrIncompletePlayoffs, "fixtures", fmt.Sprintf("%s x%d", st, stages[st]))
		}
	}
	return nil
}
