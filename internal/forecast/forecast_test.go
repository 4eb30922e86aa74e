package forecast

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cache"
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog/catalogtest"
	"github.com/DhavalSuthar-24/miow-forecast/internal/common"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cricket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
)

var teams = []string{"MI", "CSK", "RCB", "KKR"}

func template() *bracket.Template {
	t := &bracket.Template{Name: "mini", Teams: teams, Rosters: make(map[string][]string)}
	for _, team := range teams {
		t.Rosters[team] = catalogtest.XI(team)
	}
	id := 1
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			t.Fixtures = append(t.Fixtures, bracket.TemplateFixture{ID: id, Stage: cricket.StageGroup, Venue: "WANKHEDE", Team1: teams[i], Team2: teams[j]})
			id++
		}
	}
	for _, st := range []cricket.Stage{cricket.StageQualifier1, cricket.StageEliminator, cricket.StageQualifier2, cricket.StageFinal} {
		t.Fixtures = append(t.Fixtures, bracket.TemplateFixture{ID: id, Stage: st, Venue: "WANKHEDE"})
		id++
	}
	return t
}

type fakeSource struct{}

func (fakeSource) Universe(context.Context) (*bracket.Universe, error) {
	var players []string
	for _, team := range teams {
		players = append(players, catalogtest.XI(team)...)
	}
	return bracket.NewUniverse([]string{"WANKHEDE"}, teams, players), nil
}

func (fakeSource) Catalog(context.Context) (*catalog.Catalog, error) {
	return catalogtest.Catalog(teams...), nil
}

type fakeRepo struct {
	mu        sync.Mutex
	runs      map[uuid.UUID]*Run
	fixtures  []FixtureOutcome
	standings []ScenarioStanding
	rewards   []PlayerReward
	balls     []BallLog
	saveErr   error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{runs: make(map[uuid.UUID]*Run)} }

func (r *fakeRepo) CreateRun(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs[run.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveOutcome(_ context.Context, run *Run, out *bracket.Outcome, withBalls bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *run
	r.runs[run.ID] = &cp
	for _, f := range out.Fixtures {
		r.fixtures = append(r.fixtures, newFixtureOutcome(run.ID, f))
	}
	for _, s := range out.Standings {
		r.standings = append(r.standings, ScenarioStanding{RunID: run.ID, Scenario: s.Scenario})
	}
	for i, p := range out.Players {
		r.rewards = append(r.rewards, newPlayerReward(run.ID, i+1, p))
	}
	if withBalls {
		for _, b := range out.Balls {
			r.balls = append(r.balls, BallLog{RunID: run.ID, BallRecord: b})
		}
	}
	return nil
}

func (r *fakeRepo) FailRun(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run := r.runs[id]; run != nil {
		run.Status, run.Error = StatusFailed, reason
	}
	return nil
}

func (r *fakeRepo) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (r *fakeRepo) ListRuns(_ context.Context, clientID string, page, pageSize int) ([]Run, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Run
	for _, run := range r.runs {
		if run.ClientID == clientID {
			out = append(out, *run)
		}
	}
	return pageOf(out, page, pageSize)
}

func filterRows[T any](rows []T, keep func(T) bool) []T {
	var out []T
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func pageOf[T any](rows []T, page, pageSize int) ([]T, int64, error) {
	total := int64(len(rows))
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(rows))
	return rows[start:end], total, nil
}

func (r *fakeRepo) ListFixtures(_ context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]FixtureOutcome, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pageOf(filterRows(r.fixtures, func(x FixtureOutcome) bool {
		return x.RunID == id && (f.Scenario == nil || x.Scenario == *f.Scenario)
	}), page, pageSize)
}

func (r *fakeRepo) ListStandings(_ context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]ScenarioStanding, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pageOf(filterRows(r.standings, func(x ScenarioStanding) bool {
		return x.RunID == id && (f.Scenario == nil || x.Scenario == *f.Scenario)
	}), page, pageSize)
}

func (r *fakeRepo) ListRewards(_ context.Context, id uuid.UUID, page, pageSize int) ([]PlayerReward, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pageOf(filterRows(r.rewards, func(x PlayerReward) bool { return x.RunID == id }), page, pageSize)
}

func (r *fakeRepo) ListBalls(_ context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]BallLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pageOf(filterRows(r.balls, func(x BallLog) bool {
		return x.RunID == id &&
			(f.Scenario == nil || x.Scenario == *f.Scenario) &&
			(f.MatchKey == nil || x.MatchKey == *f.MatchKey)
	}), page, pageSize)
}

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	odds     map[string]map[string]float64
	gets     int
	topReads int
	err      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte), odds: make(map[string]map[string]float64)}
}

func (c *fakeCache) PutForecast(_ context.Context, id string, summary interface{}, odds map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, _ := json.Marshal(summary)
	c.entries[id] = raw
	c.odds[id] = odds
	return nil
}

func (c *fakeCache) GetForecast(_ context.Context, id string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.entries[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) TopChampions(_ context.Context, id string, count int64) ([]cache.Odds, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topReads++
	if c.err != nil {
		return nil, c.err
	}
	var out []cache.Odds
	for team, p := range c.odds[id] {
		out = append(out, cache.Odds{Team: team, Probability: p})
	}
	slices.SortFunc(out, func(a, b cache.Odds) int {
		if d := cmp.Compare(b.Probability, a.Probability); d != 0 {
			return d
		}
		return cmp.Compare(a.Team, b.Team)
	})
	if int64(len(out)) > count {
		out = out[:count]
	}
	for i := range out {
		out[i].Rank = int64(i) + 1
	}
	return out, nil
}

func newService(repo Repository, cache SummaryCache) *Service {
	opts := Options{MaxScenarios: 10, DefaultScenarios: 4, Seed: 99, Workers: 2, PersistBalls: true, TopPlayers: 5}
	return NewService(repo, fakeSource{}, cache, reward.DefaultPoints(), opts, zerolog.Nop())
}

func TestForecastStoresOutcome(t *testing.T) {
	repo, cache := newFakeRepo(), newFakeCache()
	svc := newService(repo, cache)

	summary, err := svc.Forecast(context.Background(), "desk", ForecastRequest{Template: template()})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if summary.Scenarios != 4 || summary.Seed != 99 || summary.Status != StatusCompleted {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.TopPlayers) != 5 {
		t.Errorf("top players = %d, want 5", len(summary.TopPlayers))
	}

	titles := 0
	for _, c := range summary.Champions {
		titles += c.Titles
	}
	if titles != 4 {
		t.Errorf("titles = %d, want one per scenario", titles)
	}

	if got := len(repo.fixtures); got != 4*10 {
		t.Errorf("stored %d fixtures, want 40", got)
	}
	if len(repo.standings) != 4 || len(repo.balls) != summary.Balls || summary.Balls == 0 {
		t.Errorf("standings %d, balls %d/%d", len(repo.standings), len(repo.balls), summary.Balls)
	}
	run := repo.runs[summary.RunID]
	if run.ClientID != "desk" || run.ChampionCounts.Data == nil {
		t.Errorf("run = %+v", run)
	}
	if _, ok := cache.entries[summary.RunID.String()]; !ok {
		t.Error("summary was not cached")
	}
}

func TestForecastIsReproducible(t *testing.T) {
	seed := uint64(7)
	req := ForecastRequest{Scenarios: 3, Seed: &seed, Template: template()}
	a, err := newService(newFakeRepo(), nil).Forecast(context.Background(), "x", req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newService(newFakeRepo(), nil).Forecast(context.Background(), "x", req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Balls != b.Balls || len(a.Champions) != len(b.Champions) {
		t.Fatalf("runs differ: %d vs %d balls", a.Balls, b.Balls)
	}
	for i := range a.Champions {
		if a.Champions[i] != b.Champions[i] {
			t.Errorf("champion odds differ at %d: %+v vs %+v", i, a.Champions[i], b.Champions[i])
		}
	}
}

func TestForecastRejectsInvalidInput(t *testing.T) {
	unknownVenue := template()
	unknownVenue.Fixtures[0].Venue = "LORDS"

	tests := []struct {
		name string
		req  ForecastRequest
		want error
	}{
		{"too many scenarios", ForecastRequest{Scenarios: 11, Template: template()}, bracket.ErrTooManyScenarios},
		{"unknown venue", ForecastRequest{Template: unknownVenue}, bracket.ErrUnknownVenue},
		{"no template", ForecastRequest{}, ErrTemplateUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			_, err := newService(repo, nil).Forecast(context.Background(), "x", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(repo.runs) != 0 {
				t.Error("a run was stored for invalid input")
			}
		})
	}
}

func TestForecastMarksFailedRuns(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")
	_, err := newService(repo, nil).Forecast(context.Background(), "x", ForecastRequest{Template: template()})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, run := range repo.runs {
		if run.Status != StatusFailed || run.Error != "disk full" {
			t.Errorf("run = %+v", run)
		}
	}
}

func TestForecastCancelled(t *testing.T) {
	repo := newFakeRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(repo, nil).Forecast(ctx, "x", ForecastRequest{Template: template()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	for _, run := range repo.runs {
		if run.Status != StatusFailed {
			t.Errorf("cancelled run left in %s", run.Status)
		}
	}
}

func TestGetUsesCacheThenRepository(t *testing.T) {
	repo, cache := newFakeRepo(), newFakeCache()
	svc := newService(repo, cache)
	summary, err := svc.Forecast(context.Background(), "x", ForecastRequest{Template: template()})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(context.Background(), summary.RunID)
	if err != nil || got.Balls != summary.Balls {
		t.Fatalf("cached Get = %+v, %v", got, err)
	}

	// A broken cache falls through to the repository.
	cache.err = errors.New("connection refused")
	got, err = svc.Get(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("Get without cache: %v", err)
	}
	if len(got.Champions) != len(summary.Champions) || got.Champions[0] != summary.Champions[0] {
		t.Errorf("champions = %+v, want %+v", got.Champions, summary.Champions)
	}
	if len(got.TopPlayers) != 5 || got.TopPlayers[0].Player != summary.TopPlayers[0].Player {
		t.Errorf("top players = %+v", got.TopPlayers)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("unknown run: err = %v", err)
	}
}

func TestOddsUsesCacheThenRepository(t *testing.T) {
	repo, fc := newFakeRepo(), newFakeCache()
	svc := newService(repo, fc)
	summary, err := svc.Forecast(context.Background(), "x", ForecastRequest{Scenarios: 8, Template: template()})
	if err != nil {
		t.Fatal(err)
	}
	want := min(2, len(summary.Champions))

	cached, err := svc.Odds(context.Background(), summary.RunID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if fc.topReads != 1 || len(cached) != want {
		t.Fatalf("cached odds = %+v after %d reads", cached, fc.topReads)
	}
	if cached[0].Rank != 1 || cached[0].Probability != summary.Champions[0].Probability {
		t.Errorf("cached favourite = %+v, want probability %v", cached[0], summary.Champions[0].Probability)
	}

	fc.err = errors.New("connection refused")
	rebuilt, err := svc.Odds(context.Background(), summary.RunID, 2)
	if err != nil {
		t.Fatalf("Odds without cache: %v", err)
	}
	if len(rebuilt) != want {
		t.Fatalf("rebuilt odds = %+v", rebuilt)
	}
	for i, o := range rebuilt {
		c := summary.Champions[i]
		if o.Rank != int64(i)+1 || o.Team != c.Team || o.Probability != c.Probability {
			t.Errorf("rebuilt[%d] = %+v, want %+v", i, o, c)
		}
	}

	fc.err = nil
	if _, err := svc.Odds(context.Background(), uuid.New(), 2); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("unknown run: err = %v", err)
	}
}

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/forecasts", func(c *gin.Context) {
		c.Set(common.ContextClientIDKey, "desk")
	})
	fc := NewForecastController(svc, zerolog.Nop())
	g.POST("", fc.CreateForecast)
	g.GET("", fc.GetForecasts)
	g.GET("/:id", fc.GetForecast)
	g.GET("/:id/odds", fc.GetOdds)
	g.GET("/:id/fixtures", fc.GetFixtures)
	g.GET("/:id/standings", fc.GetStandings)
	g.GET("/:id/rewards", fc.GetRewards)
	g.GET("/:id/balls", fc.GetBalls)
	return r
}

type envelope struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Errors     map[string]string `json:"errors"`
	Pagination struct {
		TotalItems int64 `json:"total_items"`
	} `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: bad body %q", method, path, w.Body.String())
	}
	return w.Code, env
}

func TestForecastEndpoints(t *testing.T) {
	repo := newFakeRepo()
	r := newRouter(newService(repo, newFakeCache()))

	code, env := do(t, r, http.MethodPost, "/api/forecasts", ForecastRequest{Scenarios: 2, Template: template()})
	if code != http.StatusCreated {
		t.Fatalf("create: status %d %+v", code, env)
	}
	var summary Summary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatal(err)
	}
	base := "/api/forecasts/" + summary.RunID.String()

	tests := []struct {
		path  string
		want  int
		total int64
	}{
		{base, http.StatusOK, 0},
		{"/api/forecasts", http.StatusOK, 1},
		{base + "/odds?top=2", http.StatusOK, 0},
		{base + "/odds?top=0", http.StatusBadRequest, 0},
		{"/api/forecasts/" + uuid.NewString() + "/odds", http.StatusNotFound, 0},
		{base + "/fixtures", http.StatusOK, 20},
		{base + "/fixtures?scenario=1&page_size=5", http.StatusOK, 10},
		{base + "/standings", http.StatusOK, 2},
		{base + "/rewards", http.StatusOK, int64(len(repo.rewards))},
		{base + "/balls?scenario=0", http.StatusOK, int64(countBalls(repo, 0))},
		{base + "/balls?scenario=x", http.StatusBadRequest, 0},
		{"/api/forecasts/not-a-uuid", http.StatusBadRequest, 0},
		{"/api/forecasts/" + uuid.NewString() + "/fixtures", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, env := do(t, r, http.MethodGet, tt.path, nil)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%+v)", code, tt.want, env)
			}
			if tt.total > 0 && env.Pagination.TotalItems != tt.total {
				t.Errorf("total = %d, want %d", env.Pagination.TotalItems, tt.total)
			}
		})
	}
}

func countBalls(repo *fakeRepo, scenario int) int {
	n := 0
	for _, b := range repo.balls {
		if b.Scenario == scenario {
			n++
		}
	}
	return n
}

func TestCreateForecastValidation(t *testing.T) {
	r := newRouter(newService(newFakeRepo(), nil))
	bad := template()
	bad.Teams = bad.Teams[:3]

	code, env := do(t, r, http.MethodPost, "/api/forecasts", ForecastRequest{Template: bad})
	if code != http.StatusBadRequest || len(env.Errors) == 0 {
		t.Fatalf("status %d, errors %v", code, env.Errors)
	}

	code, _ = do(t, r, http.MethodPost, "/api/forecasts", gin.H{"scenarios": -1})
	if code != http.StatusBadRequest {
		t.Fatalf("negative scenarios: status %d", code)
	}
}
