// Package engine advances simulated T20 matches one delivery at a time.
package engine

import (
	"errors"
	"fmt"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

var (
	ErrNoOverPending   = errors.New("engine: no over change pending")
	ErrQuotaExceeded   = errors.New("engine: bowler has used his over quota")
	ErrConsecutiveOver = errors.New("engine: bowler bowled the previous over")
	ErrNotInXI         = errors.New("engine: player is not in the XI")
	ErrInningsOrder    = errors.New("engine: innings transition out of order")
	ErrInvalidSpec     = errors.New("engine: invalid match spec")
)

// State of a Machine between deliveries.
type State int

const (
	AwaitingBall State = iota
	OverComplete
	InningComplete
	MatchComplete
)

func (s State) String() string {
	switch s {
	case AwaitingBall:
		return "awaiting_ball"
	case OverComplete:
		return "over_complete"
	case InningComplete:
		return "inning_complete"
	case MatchComplete:
		return "match_complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Picker supplies the randomness a Machine needs beyond the ball outcome.
// *catalog.Sampler satisfies it.
type Picker interface {
	Fielder(xi []string, exclude string) string
	Coin() bool
}

// Innings is the final line of one batting turn.
type Innings struct {
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	Runs        int    `json:"runs"`
	Wickets     int    `json:"wickets"`
	Balls       int    `json:"balls"`
}

// MatchResult summarises a completed match.
type MatchResult struct {
	Scenario     int                  `json:"scenario"`
	MatchKey     int64                `json:"match_key"`
	Venue        string               `json:"venue"`
	Team1        string               `json:"team1"`
	Team2        string               `json:"team2"`
	TossWinner   string               `json:"toss_winner"`
	TossDecision cricket.TossDecision `json:"toss_decision"`
	Innings      [2]Innings           `json:"innings"`
	Winner       string               `json:"winner"`
	Loser        string               `json:"loser"`
	Tied         bool                 `json:"tied"`
	Margin       string               `json:"margin"`
}

// Machine is the ball-by-ball state of one (scenario, match) pair. It is
// owned by a single goroutine.
type Machine struct {
	spec   MatchSpec
	picker Picker
	state  State

	inning               int
	batting, bowling     string
	battingXI, bowlingXI []string

	over        int // 0-based
	legalInOver int
	delivery    int // deliveries in the current over, extras included
	legalBalls  int

	striker, nonStriker string
	bowler, lastBowler  string
	nextBatter          int
	overs               map[string]int

	runs, wickets           int
	targetRuns, targetBalls int

	innings [2]Innings
	winner  string
	loser   string
	tied    bool
	margin  string
}

// NewMachine starts inning 1 with battingFirst at the crease and opener
// bowling over 0.
func NewMachine(spec MatchSpec, battingFirst, opener string, picker Picker) (*Machine, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	var bowlingFirst string
	switch battingFirst {
	case spec.Team1:
		bowlingFirst = spec.Team2
	case spec.Team2:
		bowlingFirst = spec.Team1
	default:
		return nil, fmt.Errorf("%w: %q does not play match %d", ErrInvalidSpec, battingFirst, spec.MatchKey)
	}

	m := &Machine{spec: spec, picker: picker}
	if err := m.startInnings(1, battingFirst, bowlingFirst, opener); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) startInnings(n int, batting, bowling, opener string) error {
	bowlingXI := m.spec.XI[bowling]
	if !contains(bowlingXI, opener) {
		return fmt.Errorf("%w: opener %q for %s", ErrNotInXI, opener, bowling)
	}
	m.inning = n
	m.batting, m.bowling = batting, bowling
	m.battingXI, m.bowlingXI = m.spec.XI[batting], bowlingXI
	m.over, m.legalInOver, m.delivery, m.legalBalls = 0, 0, 0, 0
	m.runs, m.wickets = 0, 0
	m.striker, m.nonStriker = m.battingXI[0], m.battingXI[1]
	m.nextBatter = 2
	m.bowler, m.lastBowler = opener, ""
	m.overs = make(map[string]int, len(bowlingXI))
	m.state = AwaitingBall
	return nil
}

// AdvanceBall applies one sampled outcome. It returns false and an empty
// record when no ball can be bowled: after MatchComplete, and while an over
// change or innings change is pending.
func (m *Machine) AdvanceBall(o cricket.Outcome) (BallRecord, bool) {
	if m.state != AwaitingBall {
		return BallRecord{}, false
	}

	m.delivery++
	rec := BallRecord{
		Scenario:        m.spec.Scenario,
		MatchKey:        m.spec.MatchKey,
		Inning:          m.inning,
		Over:            m.over,
		Ball:            m.delivery,
		BattingTeam:     m.batting,
		BowlingTeam:     m.bowling,
		Striker:         m.striker,
		NonStriker:      m.nonStriker,
		Bowler:          m.bowler,
		Runs:            o.Runs,
		Extras:          o.Extra.Runs,
		ExtraType:       o.Extra.Type,
		IsLegal:         o.Legal,
		IsWicket:        o.Wicket,
		Dismissal:       o.Dismissal,
		DirectRunOut:    o.DirectRunOut,
		PreviousTotal:   m.runs,
		PreviousWickets: m.wickets,
		TargetRuns:      m.targetRuns,
		TargetBalls:     m.targetBalls,
	}

	m.runs += o.Total()
	if o.Legal {
		m.legalInOver++
		m.legalBalls++
		rec.LegalBall = m.legalInOver
	} else {
		rec.LegalBall = m.legalInOver + 1
	}

	if o.Wicket {
		m.wickets++
		out := m.striker
		if o.Dismissal == cricket.DismissalRunOut && o.NonStrikerOut {
			out = m.nonStriker
		}
		rec.PlayerOut = out
		switch {
		case o.Dismissal == cricket.DismissalCaughtAndBowled:
			rec.Fielder = m.bowler
		case o.Dismissal.NeedsFielder():
			rec.Fielder = m.picker.Fielder(m.bowlingXI, m.bowler)
		}
		if m.wickets < cricket.MaxWickets && m.nextBatter < len(m.battingXI) {
			in := m.battingXI[m.nextBatter]
			m.nextBatter++
			if out == m.nonStriker {
				m.nonStriker = in
			} else {
				m.striker = in
			}
		}
	} else if o.Runs%2 == 1 {
		m.striker, m.nonStriker = m.nonStriker, m.striker
	}

	overDone := o.Legal && m.legalInOver == cricket.BallsPerOver
	if overDone {
		m.overs[m.bowler]++
		m.lastBowler = m.bowler
		m.over++
		m.legalInOver = 0
		m.delivery = 0
	}

	switch {
	case m.inning == 2 && m.runs >= m.targetRuns:
		m.endInnings()
	case m.wickets >= cricket.MaxWickets || m.over >= cricket.MaxOvers:
		m.endInnings()
	case overDone:
		m.state = OverComplete
	}
	return rec, true
}

// ChangeOver rotates strike and hands the ball to the next bowler.
func (m *Machine) ChangeOver(bowler string) error {
	if m.state != OverComplete {
		return fmt.Errorf("%w (state %s)", ErrNoOverPending, m.state)
	}
	if !contains(m.bowlingXI, bowler) {
		return fmt.Errorf("%w: bowler %q for %s", ErrNotInXI, bowler, m.bowling)
	}
	if bowler == m.lastBowler {
		return fmt.Errorf("%w: %s", ErrConsecutiveOver, bowler)
	}
	if m.overs[bowler] >= cricket.MaxOversPerBowler {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, bowler)
	}
	m.striker, m.nonStriker = m.nonStriker, m.striker
	m.bowler = bowler
	m.state = AwaitingBall
	return nil
}

// SetInnings moves a match whose first innings is complete into inning 2:
// roles swap, target becomes the inning-1 total plus one and every
// per-innings counter resets.
func (m *Machine) SetInnings(n int, opener string) error {
	if n != 2 || m.inning != 1 || m.state != InningComplete {
		return fmt.Errorf("%w: inning %d -> %d in state %s", ErrInningsOrder, m.inning, n, m.state)
	}
	first := m.innings[0]
	if err := m.startInnings(2, first.BowlingTeam, first.BattingTeam, opener); err != nil {
		return err
	}
	m.targetRuns = first.Runs + 1
	m.targetBalls = cricket.InningsBalls
	return nil
}

func (m *Machine) endInnings() {
	m.innings[m.inning-1] = Innings{
		BattingTeam: m.batting,
		BowlingTeam: m.bowling,
		Runs:        m.runs,
		Wickets:     m.wickets,
		Balls:       m.legalBalls,
	}
	if m.inning == 1 {
		m.state = InningComplete
		return
	}
	m.state = MatchComplete

	first, second := m.innings[0], m.innings[1]
	switch {
	case second.Runs > first.Runs:
		m.winner, m.loser = second.BattingTeam, first.BattingTeam
		m.margin = fmt.Sprintf("%d wickets", cricket.MaxWickets-second.Wickets)
	case second.Runs < first.Runs:
		m.winner, m.loser = first.BattingTeam, second.BattingTeam
		m.margin = fmt.Sprintf("%d runs", first.Runs-second.Runs)
	default:
		// Scores level: the super over is reduced to a coin flip.
		m.tied = true
		m.margin = "super over"
		if m.picker.Coin() {
			m.winner, m.loser = first.BattingTeam, second.BattingTeam
		} else {
			m.winner, m.loser = second.BattingTeam, first.BattingTeam
		}
	}
}

func (m *Machine) State() State        { return m.state }
func (m *Machine) Inning() int         { return m.inning }
func (m *Machine) Over() int           { return m.over }
func (m *Machine) Runs() int           { return m.runs }
func (m *Machine) Wickets() int        { return m.wickets }
func (m *Machine) Target() int         { return m.targetRuns }
func (m *Machine) Bowler() string      { return m.bowler }
func (m *Machine) LastBowler() string  { return m.lastBowler }
func (m *Machine) BattingTeam() string { return m.batting }
func (m *Machine) BowlingTeam() string { return m.bowling }
func (m *Machine) BattingXI() []string { return m.battingXI }
func (m *Machine) BowlingXI() []string { return m.bowlingXI }
func (m *Machine) Striker() string     { return m.striker }
func (m *Machine) NonStriker() string  { return m.nonStriker }
func (m *Machine) Innings() [2]Innings { return m.innings }

// OversBowled returns a copy of the completed overs per bowler this innings.
func (m *Machine) OversBowled() map[string]int {
	out := make(map[string]int, len(m.overs))
	for k, v := range m.overs {
		out[k] = v
	}
	return out
}

// Result returns the match summary. Winner and Loser are empty until the
// match is complete.
func (m *Machine) Result() MatchResult {
	return MatchResult{
		Scenario: m.spec.Scenario,
		MatchKey: m.spec.MatchKey,
		Venue:    m.spec.Venue,
		Team1:    m.spec.Team1,
		Team2:    m.spec.Team2,
		Innings:  m.innings,
		Winner:   m.winner,
		Loser:    m.loser,
		Tied:     m.tied,
		Margin:   m.margin,
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
