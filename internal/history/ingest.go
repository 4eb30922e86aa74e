package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

var ErrInvalidMatch = errors.New("history: invalid match")

func invalidMatch(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidMatch, fmt.Sprintf(format, args...))
}

// ToMatch checks the input and expands it into a HistoricalMatch with
// batting sides, delivery sequence numbers and boundary flags filled in.
func (in MatchInput) ToMatch() (*HistoricalMatch, error) {
	teams := []string{in.Team1, in.Team2}
	other := func(team string) string {
		if team == in.Team1 {
			return in.Team2
		}
		return in.Team1
	}
	if in.TossWinner != in.Team1 && in.TossWinner != in.Team2 {
		return nil, invalidMatch("toss winner %q did not play", in.TossWinner)
	}
	if in.Winner != "" && in.Winner != in.Team1 && in.Winner != in.Team2 {
		return nil, invalidMatch("winner %q did not play", in.Winner)
	}
	squad := make(map[string]string)
	for _, team := range teams {
		players := in.Players[team]
		if len(players) == 0 {
			return nil, invalidMatch("no players listed for %s", team)
		}
		for _, p := range players {
			if owner, dup := squad[p]; dup && owner != team {
				return nil, invalidMatch("player %s listed for both teams", p)
			}
			squad[p] = team
		}
	}

	first := in.TossWinner
	if in.TossDecision == cricket.TossField {
		first = other(in.TossWinner)
	}

	m := &HistoricalMatch{
		Season:       in.Season,
		VenueCode:    in.Venue,
		Team1Code:    in.Team1,
		Team2Code:    in.Team2,
		TossWinner:   in.TossWinner,
		TossDecision: in.TossDecision,
		Winner:       in.Winner,
		Deliveries:   make([]Delivery, 0, len(in.Deliveries)),
	}

	type overKey struct{ innings, over int }
	seq := make(map[overKey]int)
	for i, d := range in.Deliveries {
		batting := first
		if d.InningsNumber == 2 {
			batting = other(first)
		}
		bowling := other(batting)
		if squad[d.Bowler] != bowling {
			return nil, invalidMatch("delivery %d: bowler %s is not in %s", i, d.Bowler, bowling)
		}
		if squad[d.Striker] != batting || squad[d.NonStriker] != batting {
			return nil, invalidMatch("delivery %d: batters are not in %s", i, batting)
		}
		wicket := d.DismissalType != cricket.DismissalNone
		if wicket && d.PlayerOut == "" {
			d.PlayerOut = d.Striker
		}
		if d.Fielder1 != "" && squad[d.Fielder1] != bowling {
			return nil, invalidMatch("delivery %d: fielder %s is not in %s", i, d.Fielder1, bowling)
		}

		k := overKey{d.InningsNumber, d.OverNumber}
		seq[k]++
		extra := cricket.Extra{Type: d.ExtraType, Runs: d.ExtraRuns}
		m.Deliveries = append(m.Deliveries, Delivery{
			InningsNumber:    d.InningsNumber,
			BattingTeam:      batting,
			BowlingTeam:      bowling,
			OverNumber:       d.OverNumber,
			BallNumberInOver: d.BallNumberInOver,
			DeliveryInOver:   seq[k],
			Bowler:           d.Bowler,
			Striker:          d.Striker,
			NonStriker:       d.NonStriker,
			RunsScored:       d.RunsScored,
			IsFour:           d.RunsScored == 4,
			IsSix:            d.RunsScored == 6,
			ExtraType:        d.ExtraType,
			ExtraRuns:        d.ExtraRuns,
			IsWicket:         wicket,
			DismissalType:    d.DismissalType,
			PlayerOut:        d.PlayerOut,
			Fielder1:         d.Fielder1,
			DirectHit:        d.DirectHit,
			IsLegalDelivery:  !extra.Illegal(),
		})
	}
	return m, nil
}

// Ingest stores one match together with any venue, team or player it
// introduces, in a single transaction.
func Ingest(ctx context.Context, repo Repository, in MatchInput) (*HistoricalMatch, error) {
	m, err := in.ToMatch()
	if err != nil {
		return nil, err
	}
	err = repo.WithTransaction(func(tx Repository) error {
		if err := tx.UpsertVenue(ctx, &Venue{Code: in.Venue, Name: in.Venue}); err != nil {
			return fmt.Errorf("failed to upsert venue: %w", err)
		}
		var players []Player
		for _, team := range []string{in.Team1, in.Team2} {
			if err := tx.UpsertTeam(ctx, &Team{Code: team, Name: team}); err != nil {
				return fmt.Errorf("failed to upsert team %s: %w", team, err)
			}
			for _, p := range in.Players[team] {
				players = append(players, Player{Code: p, Name: p, TeamCode: team})
			}
		}
		if err := tx.UpsertPlayers(ctx, players); err != nil {
			return fmt.Errorf("failed to upsert players: %w", err)
		}
		return tx.CreateMatch(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
