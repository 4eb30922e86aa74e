// Package forecast runs tournament forecasts on demand, stores their
// outcome and serves it back over HTTP.
package forecast

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
	"github.com/DhavalSuthar-24/miow-forecast/internal/models"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one forecast request and its headline result.
type Run struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `json:"-" gorm:"index"`
	ClientID       string                      `json:"client_id" gorm:"index"`
	TemplateName   string                      `json:"template_name"`
	Scenarios      int                         `json:"scenarios" gorm:"not null"`
	Seed           int64                       `json:"seed"` // bit pattern of the uint64 seed
	Status         RunStatus                   `json:"status" gorm:"index;not null;default:'running'"`
	Error          string                      `json:"error,omitempty" gorm:"type:text"`
	ChampionCounts models.JSON[map[string]int] `json:"champion_counts"`
	BallCount      int                         `json:"ball_count"`
	CompletedAt    *time.Time                  `json:"completed_at,omitempty"`
}

// FixtureOutcome is one fixture of one scenario.
type FixtureOutcome struct {
	ID           uint                 `json:"-" gorm:"primaryKey"`
	RunID        uuid.UUID            `json:"run_id" gorm:"type:uuid;index:idx_fixture_run_scenario;not null"`
	Scenario     int                  `json:"scenario" gorm:"index:idx_fixture_run_scenario"`
	FixtureID    int                  `json:"fixture_id"`
	MatchKey     int64                `json:"match_key"`
	Stage        cricket.Stage        `json:"stage"`
	Venue        string               `json:"venue"`
	Date         string               `json:"date,omitempty"`
	Team1        string               `json:"team1"`
	Team2        string               `json:"team2"`
	TossWinner   string               `json:"toss_winner,omitempty"`
	TossDecision cricket.TossDecision `json:"toss_decision,omitempty"`
	FirstBatting string               `json:"first_batting"`
	FirstRuns    int                  `json:"first_runs"`
	FirstWickets int                  `json:"first_wickets"`
	FirstBalls   int                  `json:"first_balls"`
	SecondRuns   int                  `json:"second_runs"`
	SecondWkts   int                  `json:"second_wickets"`
	SecondBalls  int                  `json:"second_balls"`
	Winner       string               `json:"winner"`
	Loser        string               `json:"loser"`
	Tied         bool                 `json:"tied"`
	Margin       string               `json:"margin,omitempty"`
	Simulated    bool                 `json:"simulated"`
}

func newFixtureOutcome(runID uuid.UUID, f bracket.CompletedFixture) FixtureOutcome {
	first, second := f.Innings[0], f.Innings[1]
	return FixtureOutcome{
		RunID:        runID,
		Scenario:     f.Scenario,
		FixtureID:    f.FixtureID,
		MatchKey:     f.MatchKey,
		Stage:        f.Stage,
		Venue:        f.Venue,
		Date:         f.Date,
		Team1:        f.Team1,
		Team2:        f.Team2,
		TossWinner:   f.TossWinner,
		TossDecision: f.TossDecision,
		FirstBatting: first.BattingTeam,
		FirstRuns:    first.Runs,
		FirstWickets: first.Wickets,
		FirstBalls:   first.Balls,
		SecondRuns:   second.Runs,
		SecondWkts:   second.Wickets,
		SecondBalls:  second.Balls,
		Winner:       f.Winner,
		Loser:        f.Loser,
		Tied:         f.Tied,
		Margin:       f.Margin,
		Simulated:    f.Simulated,
	}
}

// ScenarioStanding is the ranked group table of one scenario.
type ScenarioStanding struct {
	ID       uint                                `json:"-" gorm:"primaryKey"`
	RunID    uuid.UUID                           `json:"run_id" gorm:"type:uuid;uniqueIndex:idx_standing_run_scenario;not null"`
	Scenario int                                 `json:"scenario" gorm:"uniqueIndex:idx_standing_run_scenario"`
	Seeds    models.StringSlice                  `json:"seeds"`
	Table    models.JSON[[]bracket.TeamStanding] `json:"table"`
}

// PlayerReward is a player's points summary across the scenarios of a run.
type PlayerReward struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	RunID     uuid.UUID       `json:"run_id" gorm:"type:uuid;index:idx_reward_run_rank;not null"`
	Rank      int             `json:"rank" gorm:"index:idx_reward_run_rank"`
	Player    string          `json:"player"`
	Team      string          `json:"team"`
	Scenarios int             `json:"scenarios"`
	Mean      decimal.Decimal `json:"mean" gorm:"type:numeric(12,4)"`
	Min       decimal.Decimal `json:"min" gorm:"type:numeric(12,4)"`
	Max       decimal.Decimal `json:"max" gorm:"type:numeric(12,4)"`
}

func newPlayerReward(runID uuid.UUID, rank int, s reward.PlayerSummary) PlayerReward {
	return PlayerReward{
		RunID:     runID,
		Rank:      rank,
		Player:    s.Player,
		Team:      s.Team,
		Scenarios: s.Scenarios,
		Mean:      s.Mean,
		Min:       s.Min,
		Max:       s.Max,
	}
}

func (p PlayerReward) Summary() reward.PlayerSummary {
	return reward.PlayerSummary{Player: p.Player, Team: p.Team, Scenarios: p.Scenarios, Mean: p.Mean, Min: p.Min, Max: p.Max}
}

// BallLog is one simulated delivery.
type BallLog struct {
	ID                uint      `json:"-" gorm:"primaryKey"`
	RunID             uuid.UUID `json:"run_id" gorm:"type:uuid;index:idx_ball_run;not null"`
	engine.BallRecord `gorm:"embedded"`
}

// --- DTOs ---

// ForecastRequest starts a forecast. Without a template the configured
// template file is used; without a seed the configured seed is used.
type ForecastRequest struct {
	Scenarios int               `json:"scenarios,omitempty" binding:"omitempty,gte=1" example:"20"`
	Seed      *uint64           `json:"seed,omitempty" example:"42"`
	Template  *bracket.Template `json:"template,omitempty"`
}

// Summary is the headline of a run: title odds and the best players.
type Summary struct {
	RunID        uuid.UUID              `json:"run_id"`
	Status       RunStatus              `json:"status"`
	TemplateName string                 `json:"template_name,omitempty"`
	Scenarios    int                    `json:"scenarios"`
	Seed         uint64                 `json:"seed"`
	Balls        int                    `json:"balls"`
	Champions    []bracket.ChampionOdds `json:"champions"`
	TopPlayers   []reward.PlayerSummary `json:"top_players"`
	CreatedAt    time.Time              `json:"created_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}
