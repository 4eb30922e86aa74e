// Package history is the store of past T20 matches the probability catalog
// is fitted from, and the universe of venues, teams and players a fixture
// template may reference.
package history

import (
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"gorm.io/gorm"
)

type Venue struct {
	gorm.Model
	Code string `json:"code" gorm:"uniqueIndex;not null"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

type Team struct {
	gorm.Model
	Code string `json:"code" gorm:"uniqueIndex;not null"`
	Name string `json:"name"`
}

type Player struct {
	gorm.Model
	Code     string `json:"code" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
	TeamCode string `json:"team_code,omitempty" gorm:"index"`
}

// HistoricalMatch is one completed match. Venue, team and player columns
// hold codes, not row ids, so deliveries can be streamed without joins.
type HistoricalMatch struct {
	gorm.Model
	Season       string               `json:"season,omitempty" gorm:"index"`
	VenueCode    string               `json:"venue" gorm:"index;not null"`
	Team1Code    string               `json:"team1" gorm:"not null"`
	Team2Code    string               `json:"team2" gorm:"not null"`
	TossWinner   string               `json:"toss_winner,omitempty"`
	TossDecision cricket.TossDecision `json:"toss_decision,omitempty"`
	Winner       string               `json:"winner,omitempty"`
	Deliveries   []Delivery           `json:"deliveries,omitempty" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE;"`
}

// Delivery records every ball bowled in a historical match, illegal ones
// included.
type Delivery struct {
	gorm.Model
	MatchID          uint   `json:"match_id" gorm:"index;not null"`
	InningsNumber    int    `json:"innings_number" gorm:"not null"`
	BattingTeam      string `json:"batting_team" gorm:"not null"`
	BowlingTeam      string `json:"bowling_team" gorm:"index:idx_delivery_bowling_over;not null"`
	OverNumber       int    `json:"over_number" gorm:"index:idx_delivery_bowling_over;not null"` // 0-indexed
	BallNumberInOver int    `json:"ball_number_in_over" gorm:"not null"`                         // 1-indexed for legal deliveries
	DeliveryInOver   int    `json:"delivery_in_over" gorm:"not null"`                            // can be > 6 with wides and no-balls

	Bowler     string `json:"bowler" gorm:"not null"`
	Striker    string `json:"striker" gorm:"not null"`
	NonStriker string `json:"non_striker" gorm:"not null"`

	RunsScored int               `json:"runs_scored" gorm:"default:0"` // off the bat
	IsFour     bool              `json:"is_four" gorm:"default:false"`
	IsSix      bool              `json:"is_six" gorm:"default:false"`
	ExtraType  cricket.ExtraType `json:"extra_type,omitempty"`
	ExtraRuns  int               `json:"extra_runs" gorm:"default:0"`

	IsWicket      bool                  `json:"is_wicket" gorm:"default:false"`
	DismissalType cricket.DismissalType `json:"dismissal_type,omitempty"`
	PlayerOut     string                `json:"player_out,omitempty"`
	Fielder1      string                `json:"fielder1,omitempty"`
	DirectHit     bool                  `json:"direct_hit" gorm:"default:false"`

	IsLegalDelivery bool `json:"is_legal_delivery" gorm:"default:true"`
}

// Observation converts the row into what the catalog estimator counts.
func (d Delivery) Observation() catalog.DeliveryObservation {
	return catalog.DeliveryObservation{
		BowlingTeam: d.BowlingTeam,
		Bowler:      d.Bowler,
		Over:        d.OverNumber,
		Outcome: cricket.Outcome{
			Legal:         d.IsLegalDelivery,
			Runs:          d.RunsScored,
			Extra:         cricket.Extra{Type: d.ExtraType, Runs: d.ExtraRuns},
			Wicket:        d.IsWicket,
			Dismissal:     d.DismissalType,
			DirectRunOut:  d.DismissalType == cricket.DismissalRunOut && d.DirectHit,
			NonStrikerOut: d.IsWicket && d.PlayerOut != "" && d.PlayerOut == d.NonStriker,
		},
	}
}

// TossRecord is the toss columns of one historical match.
type TossRecord struct {
	VenueCode    string
	TossWinner   string
	TossDecision cricket.TossDecision
}

func (t TossRecord) Observation() catalog.TossObservation {
	return catalog.TossObservation{Venue: t.VenueCode, Winner: t.TossWinner, Decision: t.TossDecision}
}

// --- Ingestion DTOs ---

type DeliveryInput struct {
	InningsNumber    int                   `json:"innings_number" binding:"required,oneof=1 2"`
	OverNumber       int                   `json:"over_number" binding:"gte=0,lt=20"`
	BallNumberInOver int                   `json:"ball_number_in_over" binding:"gte=0"`
	Bowler           string                `json:"bowler" binding:"required"`
	Striker          string                `json:"striker" binding:"required"`
	NonStriker       string                `json:"non_striker" binding:"required"`
	RunsScored       int                   `json:"runs_scored" binding:"gte=0,lte=7"`
	ExtraType        cricket.ExtraType     `json:"extra_type,omitempty" binding:"omitempty,oneof=wide no_ball bye leg_bye"`
	ExtraRuns        int                   `json:"extra_runs" binding:"gte=0"`
	DismissalType    cricket.DismissalType `json:"dismissal_type,omitempty" binding:"omitempty,oneof=bowled caught caught_and_bowled lbw run_out stumped hit_wicket"`
	PlayerOut        string                `json:"player_out,omitempty"`
	Fielder1         string                `json:"fielder1,omitempty"`
	DirectHit        bool                  `json:"direct_hit,omitempty"`
}

type MatchInput struct {
	Season       string               `json:"season,omitempty" example:"2024"`
	Venue        string               `json:"venue" binding:"required" example:"WANKHEDE"`
	Team1        string               `json:"team1" binding:"required" example:"MI"`
	Team2        string               `json:"team2" binding:"required,nefield=Team1" example:"CSK"`
	TossWinner   string               `json:"toss_winner" binding:"required"`
	TossDecision cricket.TossDecision `json:"toss_decision" binding:"required,oneof=bat field"`
	Winner       string               `json:"winner,omitempty"`
	// Players maps a team code to the players who took part.
	Players    map[string][]string `json:"players" binding:"required"`
	Deliveries []DeliveryInput     `json:"deliveries" binding:"required,min=1,dive"`
}

type UniverseResponse struct {
	Venues  int `json:"venues"`
	Teams   int `json:"teams"`
	Players int `json:"players"`
}
