package reward

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
)

// PointsTable is a T20 fantasy points system. Values decode from YAML
// scalars such as `run: 1` or `catch: "8"`.
type PointsTable struct {
	Run            decimal.Decimal `yaml:"run"`
	FourBonus      decimal.Decimal `yaml:"four_bonus"`
	SixBonus       decimal.Decimal `yaml:"six_bonus"`
	HalfCentury    decimal.Decimal `yaml:"half_century"`
	Century        decimal.Decimal `yaml:"century"`
	Duck           decimal.Decimal `yaml:"duck"`
	Wicket         decimal.Decimal `yaml:"wicket"`
	BowledLBW      decimal.Decimal `yaml:"bowled_lbw_bonus"`
	ThreeWickets   decimal.Decimal `yaml:"three_wicket_haul"`
	FourWickets    decimal.Decimal `yaml:"four_wicket_haul"`
	FiveWickets    decimal.Decimal `yaml:"five_wicket_haul"`
	Maiden         decimal.Decimal `yaml:"maiden"`
	Catch          decimal.Decimal `yaml:"catch"`
	ThreeCatches   decimal.Decimal `yaml:"three_catch_bonus"`
	Stumping       decimal.Decimal `yaml:"stumping"`
	RunOutDirect   decimal.Decimal `yaml:"run_out_direct"`
	RunOutIndirect decimal.Decimal `yaml:"run_out_indirect"`
}

func pts(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// DefaultPoints is the standard T20 table.
func DefaultPoints() PointsTable {
	return PointsTable{
		Run:            pts(1),
		FourBonus:      pts(1),
		SixBonus:       pts(2),
		HalfCentury:    pts(8),
		Century:        pts(16),
		Duck:           pts(-2),
		Wicket:         pts(25),
		BowledLBW:      pts(8),
		ThreeWickets:   pts(4),
		FourWickets:    pts(8),
		FiveWickets:    pts(16),
		Maiden:         pts(12),
		Catch:          pts(8),
		ThreeCatches:   pts(4),
		Stumping:       pts(12),
		RunOutDirect:   pts(12),
		RunOutIndirect: pts(6),
	}
}

// LoadPoints reads a table from path. Keys missing from the file keep their
// DefaultPoints value.
func LoadPoints(path string) (PointsTable, error) {
	table := DefaultPoints()
	raw, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read points table: %w", err)
	}
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return table, fmt.Errorf("failed to parse points table: %w", err)
	}
	return table, nil
}

// Score implements Scorer.
func (t PointsTable) Score(b engine.BallRecord) []Delta {
	var out []Delta
	if b.ExtraType != cricket.ExtraWide && b.Runs > 0 {
		p := t.Run.Mul(pts(int64(b.Runs)))
		switch b.Runs {
		case 4:
			p = p.Add(t.FourBonus)
		case 6:
			p = p.Add(t.SixBonus)
		}
		out = append(out, Delta{Player: b.Striker, Team: b.BattingTeam, Role: RoleBatting, Points: p})
	}
	if !b.IsWicket {
		return out
	}

	if b.Dismissal.CreditsBowler() {
		p := t.Wicket
		if b.Dismissal == cricket.DismissalBowled || b.Dismissal == cricket.DismissalLBW {
			p = p.Add(t.BowledLBW)
		}
		out = append(out, Delta{Player: b.Bowler, Team: b.BowlingTeam, Role: RoleBowling, Points: p})
	}

	var field decimal.Decimal
	switch b.Dismissal {
	case cricket.DismissalCaught, cricket.DismissalCaughtAndBowled:
		field = t.Catch
	case cricket.DismissalStumped:
		field = t.Stumping
	case cricket.DismissalRunOut:
		field = t.RunOutIndirect
		if b.DirectRunOut {
			field = t.RunOutDirect
		}
	}
	if b.Fielder != "" && !field.IsZero() {
		out = append(out, Delta{Player: b.Fielder, Team: b.BowlingTeam, Role: RoleFielding, Points: field})
	}
	return out
}

// ScoreLine implements LineScorer. Milestone and haul bonuses take the
// highest tier only.
func (t PointsTable) ScoreLine(l Line) []Delta {
	var out []Delta
	emit := func(role Role, p decimal.Decimal) {
		if !p.IsZero() {
			out = append(out, Delta{Player: l.Player, Team: l.Team, Role: role, Points: p})
		}
	}

	switch {
	case l.Runs >= 100:
		emit(RoleBatting, t.Century)
	case l.Runs >= 50:
		emit(RoleBatting, t.HalfCentury)
	case l.Runs == 0 && l.Out:
		emit(RoleBatting, t.Duck)
	}

	switch {
	case l.Wickets >= 5:
		emit(RoleBowling, t.FiveWickets)
	case l.Wickets == 4:
		emit(RoleBowling, t.FourWickets)
	case l.Wickets == 3:
		emit(RoleBowling, t.ThreeWickets)
	}
	if l.Maidens > 0 {
		emit(RoleBowling, t.Maiden.Mul(pts(int64(l.Maidens))))
	}
	if l.Catches >= 3 {
		emit(RoleFielding, t.ThreeCatches)
	}
	return out
}
