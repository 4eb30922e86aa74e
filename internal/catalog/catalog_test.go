package catalog

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
)

func TestNewDistribution(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		probs   []float64
		wantErr error
	}{
		{"exact", []string{"a", "b"}, []float64{0.25, 0.75}, nil},
		{"drift renormalized", []string{"a", "b", "c"}, []float64{0.1, 0.2, 0.7000004}, nil},
		{"not normalized", []string{"a", "b"}, []float64{0.5, 0.6}, ErrNotNormalized},
		{"negative", []string{"a", "b"}, []float64{-0.1, 1.1}, ErrNegativeWeight},
		{"nan", []string{"a"}, []float64{math.NaN()}, ErrNegativeWeight},
		{"empty", nil, nil, ErrEmptyDistribution},
		{"mismatch", []string{"a"}, []float64{0.5, 0.5}, ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDistribution(tt.labels, tt.probs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			sum := 0.0
			for _, p := range d.Probs() {
				sum += p
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Fatalf("mass = %.15f, want 1", sum)
			}
		})
	}
}

func TestFromWeightsMergesDuplicates(t *testing.T) {
	d, err := FromWeights([]int{1, 4, 1}, []float64{1, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Fatalf("len = %d, want 2", d.Len())
	}
	if got := d.Prob(1); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("P(1) = %v, want 0.5", got)
	}
	if got := d.Prob(6); got != 0 {
		t.Fatalf("P(6) = %v, want 0", got)
	}
}

func TestNewRejectsWrongExtraKinds(t *testing.T) {
	snap := testSnapshot()
	snap.LegalExtras = append(snap.LegalExtras, ExtraWeight{Type: cricket.ExtraWide, Runs: 1, Weight: 1})
	if _, err := snap.Catalog(); err == nil {
		t.Fatal("expected a wide in legal extras to be rejected")
	}

	snap = testSnapshot()
	snap.Legal = 1.2
	if _, err := snap.Catalog(); !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("err = %v, want ErrInvalidProbability", err)
	}
}

func TestNewRejectsNoLegalBalls(t *testing.T) {
	snap := testSnapshot()
	snap.Legal = 0
	_, err := snap.Catalog()
	if !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("err = %v, want ErrInvalidProbability", err)
	}

	snap.Legal = 0.001
	if _, err := snap.Catalog(); err != nil {
		t.Fatalf("small positive legal P rejected: %v", err)
	}
}

func TestTossDecisionFallsBackToGlobal(t *testing.T) {
	snap := testSnapshot()
	snap.Toss = []TossWeight{{Venue: "Chepauk", Winner: "CSK", Bat: 0.9}}
	c, err := snap.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if got := c.TossDecision(TossKey{Venue: "Chepauk", TossWinner: "CSK"}).P; got != 0.9 {
		t.Fatalf("seen context P = %v, want 0.9", got)
	}
	if got := c.TossDecision(TossKey{Venue: "Wankhede", TossWinner: "MI"}).P; got != snap.TossFallback {
		t.Fatalf("unseen context P = %v, want fallback %v", got, snap.TossFallback)
	}
}

func TestSamplerIsReproducible(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	a := NewSampler(c, 7, 1001)
	b := NewSampler(c, 7, 1001)
	for i := 0; i < 500; i++ {
		if x, y := a.Delivery(), b.Delivery(); x != y {
			t.Fatalf("draw %d differs: %+v vs %+v", i, x, y)
		}
	}

	other := NewSampler(c, 7, 1002)
	same := true
	a = NewSampler(c, 7, 1001)
	for i := 0; i < 50; i++ {
		if a.Delivery() != other.Delivery() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical streams")
	}
}

func TestSamplerSourceReseeds(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	s := NewSampler(c, 11, 12)
	s.src.Seed(99)
	first := Sample(s, c.Runs(), 64)
	s.Delivery()
	s.Coin()
	s.src.Seed(99)
	again := Sample(s, c.Runs(), 64)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("draw %d after reseed = %d, want %d", i, again[i], first[i])
		}
	}

	ref := rand.NewPCG(99, 0)
	s.src.Seed(99)
	for i := 0; i < 8; i++ {
		if got, want := s.src.Uint64(), ref.Uint64(); got != want {
			t.Fatalf("word %d = %d, want %d", i, got, want)
		}
	}
}

func TestDeliveryShapes(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	s := NewSampler(c, 1, 2)
	for i := 0; i < 5000; i++ {
		o := s.Delivery()
		switch {
		case !o.Legal:
			if !o.Extra.Illegal() {
				t.Fatalf("illegal delivery with extra %q", o.Extra.Type)
			}
			if o.Wicket {
				t.Fatal("wicket on an illegal delivery")
			}
			if o.Extra.Type == cricket.ExtraWide && o.Runs != 0 {
				t.Fatal("bat runs off a wide")
			}
		case o.Wicket:
			if o.Dismissal == cricket.DismissalNone {
				t.Fatal("wicket without dismissal kind")
			}
			if o.Total() != 0 {
				t.Fatalf("wicket ball scored %d", o.Total())
			}
		default:
			if o.Extra.Illegal() {
				t.Fatal("legal delivery carrying a wide/no-ball")
			}
			if o.Extra.Type != cricket.ExtraNone && o.Runs != 0 {
				t.Fatal("bat runs recorded alongside byes")
			}
		}
	}
}

func TestSampleDrawsN(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	s := NewSampler(c, 3, 4)
	d := Must(NewDistribution([]string{"bat", "field"}, []float64{1, 0}))
	got := Sample(s, d, 20)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	for _, g := range got {
		if g != "bat" {
			t.Fatalf("drew %q from a degenerate distribution", g)
		}
	}
}

func TestPickBowlerFallbackForUnseenContext(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	s := NewSampler(c, 11, 12)
	xi := []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10", "x11"}

	overs := map[string]int{"x11": 4, "x10": 2}
	// (X, 14) is not in the catalog: last eligible is x10 unless it bowled
	// the previous over.
	if got := s.PickBowler("X", 14, xi, overs, "x9"); got != "x10" {
		t.Fatalf("got %q, want x10", got)
	}
	if got := s.PickBowler("X", 14, xi, overs, "x10"); got != "x9" {
		t.Fatalf("got %q, want x9 (second-to-last eligible)", got)
	}
}

func TestPickBowlerRejectsExhaustedAndForeignDraws(t *testing.T) {
	snap := testSnapshot()
	// Only outsiders and a capped bowler are ever drawn for this context.
	snap.Bowlers = []BowlerWeights{{Team: "X", Over: 3, Weights: map[string]float64{"ghost": 5, "x8": 5}}}
	c := mustCatalog(t, snap)
	s := NewSampler(c, 5, 6)
	xi := []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10", "x11"}
	overs := map[string]int{"x8": 4}
	got := s.PickBowler("X", 3, xi, overs, "x11")
	if got != "x10" {
		t.Fatalf("got %q, want fallback x10", got)
	}
}

func TestPickBowlerHonoursDistribution(t *testing.T) {
	snap := testSnapshot()
	snap.Bowlers = []BowlerWeights{{Team: "X", Over: 0, Weights: map[string]float64{"x7": 1}}}
	c := mustCatalog(t, snap)
	s := NewSampler(c, 5, 6)
	xi := []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9", "x10", "x11"}
	if got := s.PickBowler("X", 0, xi, map[string]int{}, ""); got != "x7" {
		t.Fatalf("got %q, want x7", got)
	}
}

func TestFielderExcludesBowler(t *testing.T) {
	c := mustCatalog(t, testSnapshot())
	s := NewSampler(c, 9, 9)
	xi := []string{"a", "b"}
	for i := 0; i < 100; i++ {
		if f := s.Fielder(xi, "a"); f != "b" {
			t.Fatalf("fielder = %q, want b", f)
		}
	}
}

func TestBuilderFitsFrequencies(t *testing.T) {
	b := NewBuilder(0)
	for i := 0; i < 30; i++ {
		b.ObserveDelivery(DeliveryObservation{BowlingTeam: "X", Bowler: "x10", Over: 0,
			Outcome: cricket.Outcome{Legal: true, Runs: 1}})
		b.ObserveDelivery(DeliveryObservation{BowlingTeam: "X", Bowler: "x11", Over: 0,
			Outcome: cricket.Outcome{Legal: true, Runs: 4}})
	}
	b.ObserveDelivery(DeliveryObservation{BowlingTeam: "X", Bowler: "x11", Over: 1,
		Outcome: cricket.Outcome{Extra: cricket.Extra{Type: cricket.ExtraWide, Runs: 1}}})
	b.ObserveDelivery(DeliveryObservation{BowlingTeam: "X", Bowler: "x11", Over: 1,
		Outcome: cricket.Outcome{Legal: true, Wicket: true, Dismissal: cricket.DismissalBowled}})
	b.ObserveToss(TossObservation{Venue: "V", Winner: "X", Decision: cricket.TossField})

	c, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Runs().Prob(4); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("P(4) = %v, want 0.5", got)
	}
	d, ok := c.Bowler(BowlerKey{Team: "X", Over: 0})
	if !ok || d.Len() != 2 {
		t.Fatalf("bowler distribution for over 0 = %+v, %v", d, ok)
	}
	if got := c.TossDecision(TossKey{Venue: "V", TossWinner: "X"}).P; got != 0 {
		t.Fatalf("toss bat P = %v, want 0", got)
	}
	if got := c.Legal().P; math.Abs(got-61.0/62.0) > 1e-12 {
		t.Fatalf("legal P = %v", got)
	}
}

func TestLoadSnapshot(t *testing.T) {
	raw := `
legal: 0.94
wicket: 0.05
direct_run_out: 0.3
non_striker_run_out: 0.5
toss_fallback: 0.4
runs: {0: 40, 1: 35, 2: 8, 4: 12, 6: 5}
dismissals: {caught: 6, bowled: 2, run_out: 1}
legal_extras:
  - {type: "", runs: 0, weight: 97}
  - {type: leg_bye, runs: 1, weight: 3}
illegal_extras:
  - {type: wide, runs: 1, weight: 3}
  - {type: no_ball, runs: 1, weight: 1}
bowlers:
  - team: CSK
    over: 0
    weights: {CSK-10: 3, CSK-11: 1}
venues: [CHEPAUK]
teams: [CSK]
players: [CSK-10, CSK-11]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Runs().Prob(0); math.Abs(got-0.4) > 1e-12 {
		t.Fatalf("P(0) = %v, want 0.4", got)
	}
	d, ok := c.Bowler(BowlerKey{Team: "CSK", Over: 0})
	if !ok || math.Abs(d.Prob("CSK-10")-0.75) > 1e-12 {
		t.Fatalf("bowler distribution = %+v", d)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Venues) != 1 || snap.Venues[0] != "CHEPAUK" || len(snap.Teams) != 1 || len(snap.Players) != 2 {
		t.Fatalf("known ids = %v %v %v", snap.Venues, snap.Teams, snap.Players)
	}
}

func testSnapshot() Snapshot {
	return Snapshot{
		Legal:            0.95,
		Wicket:           0.06,
		DirectRunOut:     0.3,
		NonStrikerRunOut: 0.4,
		TossFallback:     0.5,
		Runs:             map[int]float64{0: 35, 1: 35, 2: 8, 3: 1, 4: 13, 6: 8},
		Dismissals:       map[cricket.DismissalType]float64{cricket.DismissalCaught: 6, cricket.DismissalRunOut: 2, cricket.DismissalBowled: 2},
		LegalExtras:      []ExtraWeight{{Type: cricket.ExtraNone, Weight: 96}, {Type: cricket.ExtraLegBye, Runs: 1, Weight: 4}},
		IllegalExtras:    []ExtraWeight{{Type: cricket.ExtraWide, Runs: 1, Weight: 3}, {Type: cricket.ExtraNoBall, Runs: 1, Weight: 1}},
	}
}

func mustCatalog(t *testing.T, s Snapshot) *Catalog {
	t.Helper()
	c, err := s.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}
