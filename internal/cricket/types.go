// Package cricket holds the T20 vocabulary shared by the sampler, the match
// engine, the historical store and the reward scorer.
package cricket

const (
	MaxOvers          = 20
	BallsPerOver      = 6
	MaxWickets        = 10
	MaxOversPerBowler = 4
	XISize            = 11
	// InningsBalls is the number of legal deliveries in a full innings.
	InningsBalls = MaxOvers * BallsPerOver
)

// DismissalType for cricket wickets
type DismissalType string

const (
	DismissalNone            DismissalType = ""
	DismissalBowled          DismissalType = "bowled"
	DismissalCaught          DismissalType = "caught"
	DismissalCaughtAndBowled DismissalType = "caught_and_bowled"
	DismissalLBW             DismissalType = "lbw"
	DismissalRunOut          DismissalType = "run_out"
	DismissalStumped         DismissalType = "stumped"
	DismissalHitWicket       DismissalType = "hit_wicket"
)

// NeedsFielder reports whether a fielder other than the bowler is involved.
func (d DismissalType) NeedsFielder() bool {
	switch d {
	case DismissalCaught, DismissalStumped, DismissalRunOut:
		return true
	}
	return false
}

// CreditsBowler reports whether the wicket counts towards the bowler's tally.
func (d DismissalType) CreditsBowler() bool {
	switch d {
	case DismissalNone, DismissalRunOut:
		return false
	}
	return true
}

// ExtraType for runs not scored off the bat
type ExtraType string

const (
	ExtraNone   ExtraType = ""
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "no_ball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "leg_bye"
)

// Extra is an extras type together with the runs it is worth.
type Extra struct {
	Type ExtraType `json:"type" yaml:"type"`
	Runs int       `json:"runs" yaml:"runs"`
}

// Illegal reports whether the delivery has to be re-bowled.
func (e Extra) Illegal() bool {
	return e.Type == ExtraWide || e.Type == ExtraNoBall
}

// BowlerConceded reports whether the extra runs are charged to the bowler.
// Byes and leg-byes count towards the team total only.
func (e Extra) BowlerConceded() bool {
	return e.Type != ExtraBye && e.Type != ExtraLegBye
}

// TossDecision is what the toss winner elects to do.
type TossDecision string

const (
	TossBat   TossDecision = "bat"
	TossField TossDecision = "field"
)

// Outcome is one sampled delivery before it is applied to a match.
type Outcome struct {
	Legal         bool
	Runs          int
	Extra         Extra
	Wicket        bool
	Dismissal     DismissalType
	DirectRunOut  bool
	NonStrikerOut bool
}

// Total is the runs added to the batting side.
func (o Outcome) Total() int {
	return o.Runs + o.Extra.Runs
}

// Stage of a tournament fixture.
type Stage string

const (
	StageGroup      Stage = "group"
	StageQualifier1 Stage = "qualifier1"
	StageEliminator Stage = "eliminator"
	StageQualifier2 Stage = "qualifier2"
	StageFinal      Stage = "final"
)

// Playoff reports whether s is a knockout stage.
func (s Stage) Playoff() bool {
	switch s {
	case StageQualifier1, StageEliminator, StageQualifier2, StageFinal:
		return true
	}
	return false
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s == StageGroup || s.Playoff()
}
