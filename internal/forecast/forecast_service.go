package forecast

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cache"
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
	"github.com/DhavalSuthar-24/miow-forecast/internal/models"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
)

var (
	ErrRunNotFound         = errors.New("forecast: run not found")
	ErrTemplateUnavailable = errors.New("forecast: no fixture template")
)

// CatalogSource provides the reference data a forecast is checked and
// sampled against.
type CatalogSource interface {
	Universe(ctx context.Context) (*bracket.Universe, error)
	Catalog(ctx context.Context) (*catalog.Catalog, error)
}

// SummaryCache stores run summaries. Implementations may be absent.
type SummaryCache interface {
	PutForecast(ctx context.Context, runID string, summary interface{}, odds map[string]float64) error
	GetForecast(ctx context.Context, runID string, dst interface{}) (bool, error)
	TopChampions(ctx context.Context, runID string, count int64) ([]cache.Odds, error)
}

type Options struct {
	MaxScenarios     int
	DefaultScenarios int
	Seed             uint64
	Workers          int
	TemplatePath     string
	PersistBalls     bool
	// TopPlayers is how many players a summary lists.
	TopPlayers int
}

type Service struct {
	repo   Repository
	source CatalogSource
	cache  SummaryCache
	points reward.PointsTable
	opts   Options
	logger zerolog.Logger
}

// NewService wires a Service; cache may be nil.
func NewService(repo Repository, source CatalogSource, cache SummaryCache, points reward.PointsTable, opts Options, logger zerolog.Logger) *Service {
	if opts.TopPlayers <= 0 {
		opts.TopPlayers = 10
	}
	if opts.DefaultScenarios <= 0 {
		opts.DefaultScenarios = opts.MaxScenarios
	}
	return &Service{repo: repo, source: source, cache: cache, points: points, opts: opts, logger: logger}
}

// Forecast validates req against the historical universe, plays every
// scenario, stores the outcome and returns its summary. Validation problems
// come back as *bracket.ValidationError before anything is stored.
func (s *Service) Forecast(ctx context.Context, clientID string, req ForecastRequest) (*Summary, error) {
	scenarios := req.Scenarios
	if scenarios == 0 {
		scenarios = s.opts.DefaultScenarios
	}
	seed := s.opts.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	t := req.Template
	if t == nil {
		if s.opts.TemplatePath == "" {
			return nil, ErrTemplateUnavailable
		}
		loaded, err := bracket.LoadTemplate(s.opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
		}
		t = loaded
	}

	universe, err := s.source.Universe(ctx)
	if err != nil {
		return nil, err
	}
	if err := bracket.Validate(t, universe, scenarios, s.opts.MaxScenarios); err != nil {
		return nil, err
	}
	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:           uuid.New(),
		ClientID:     clientID,
		TemplateName: t.Name,
		Scenarios:    scenarios,
		Seed:         int64(seed),
		Status:       StatusRunning,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	log := s.logger.With().Str("run_id", run.ID.String()).Logger()
	log.Info().Int("scenarios", scenarios).Uint64("seed", seed).Str("template", t.Name).Msg("forecast started")

	sim := &bracket.Simulator{
		Engine: &engine.Simulator{
			Catalog: cat,
			Seed:    seed,
			Workers: s.opts.Workers,
			Logger:  log,
		},
		MaxScenarios: s.opts.MaxScenarios,
		Scorer:       s.points,
		Logger:       log,
	}
	started := time.Now()
	out, err := sim.Simulate(ctx, t, scenarios)
	if err != nil {
		s.fail(ctx, run, log, err)
		return nil, err
	}

	now := time.Now()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	run.ChampionCounts = models.NewJSON(championCounts(out.Champions))
	run.BallCount = len(out.Balls)
	if err := s.repo.SaveOutcome(ctx, run, out, s.opts.PersistBalls); err != nil {
		s.fail(ctx, run, log, err)
		return nil, fmt.Errorf("failed to save outcome: %w", err)
	}

	summary := &Summary{
		RunID:        run.ID,
		Status:       run.Status,
		TemplateName: run.TemplateName,
		Scenarios:    scenarios,
		Seed:         seed,
		Balls:        run.BallCount,
		Champions:    out.ChampionOdds(),
		TopPlayers:   top(out.Players, s.opts.TopPlayers),
		CreatedAt:    run.CreatedAt,
		CompletedAt:  run.CompletedAt,
	}
	s.store(ctx, summary)

	log.Info().
		Int("fixtures", len(out.Fixtures)).
		Int("balls", len(out.Balls)).
		Dur("elapsed", time.Since(started)).
		Msg("forecast completed")
	return summary, nil
}

func (s *Service) fail(ctx context.Context, run *Run, log zerolog.Logger, cause error) {
	log.Error().Err(cause).Msg("forecast failed")
	// The request context may already be cancelled.
	if err := s.repo.FailRun(context.WithoutCancel(ctx), run.ID, cause.Error()); err != nil {
		log.Error().Err(err).Msg("failed to mark run as failed")
	}
}

func (s *Service) store(ctx context.Context, summary *Summary) {
	if s.cache == nil || summary.Status != StatusCompleted {
		return
	}
	odds := make(map[string]float64, len(summary.Champions))
	for _, c := range summary.Champions {
		odds[c.Team] = c.Probability
	}
	if err := s.cache.PutForecast(ctx, summary.RunID.String(), summary, odds); err != nil {
		s.logger.Warn().Err(err).Str("run_id", summary.RunID.String()).Msg("failed to cache summary")
	}
}

// Get returns the summary of a run, from the cache when possible.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Summary, error) {
	if s.cache != nil {
		var cached Summary
		hit, err := s.cache.GetForecast(ctx, id.String(), &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("run_id", id.String()).Msg("summary cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	summary := &Summary{
		RunID:        run.ID,
		Status:       run.Status,
		TemplateName: run.TemplateName,
		Scenarios:    run.Scenarios,
		Seed:         uint64(run.Seed),
		Balls:        run.BallCount,
		Champions:    bracket.OddsFromTitles(run.ChampionCounts.Data, run.Scenarios),
		CreatedAt:    run.CreatedAt,
		CompletedAt:  run.CompletedAt,
	}
	if run.Status == StatusCompleted {
		rewards, _, err := s.repo.ListRewards(ctx, id, 1, s.opts.TopPlayers)
		if err != nil {
			return nil, err
		}
		for _, r := range rewards {
			summary.TopPlayers = append(summary.TopPlayers, r.Summary())
		}
	}
	s.store(ctx, summary)
	return summary, nil
}

// Odds returns the n most likely champions of a run. The cached sorted set
// answers when present; otherwise the odds are rebuilt from the run's title
// counts.
func (s *Service) Odds(ctx context.Context, id uuid.UUID, n int) ([]cache.Odds, error) {
	if s.cache != nil {
		odds, err := s.cache.TopChampions(ctx, id.String(), int64(n))
		if err != nil {
			s.logger.Warn().Err(err).Str("run_id", id.String()).Msg("odds cache read failed")
		}
		if err == nil && len(odds) > 0 {
			return odds, nil
		}
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	titles := bracket.OddsFromTitles(run.ChampionCounts.Data, run.Scenarios)
	if len(titles) > n {
		titles = titles[:n]
	}
	out := make([]cache.Odds, len(titles))
	for i, c := range titles {
		out[i] = cache.Odds{Rank: int64(i) + 1, Team: c.Team, Probability: c.Probability}
	}
	return out, nil
}

// run loads a run for the list endpoints.
func (s *Service) run(ctx context.Context, id uuid.UUID) error {
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return ErrRunNotFound
	}
	return nil
}

func (s *Service) Runs(ctx context.Context, clientID string, page, pageSize int) ([]Run, int64, error) {
	return s.repo.ListRuns(ctx, clientID, page, pageSize)
}

func (s *Service) Fixtures(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]FixtureOutcome, int64, error) {
	if err := s.run(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.ListFixtures(ctx, id, f, page, pageSize)
}

func (s *Service) Standings(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]ScenarioStanding, int64, error) {
	if err := s.run(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.ListStandings(ctx, id, f, page, pageSize)
}

func (s *Service) Rewards(ctx context.Context, id uuid.UUID, page, pageSize int) ([]PlayerReward, int64, error) {
	if err := s.run(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.ListRewards(ctx, id, page, pageSize)
}

func (s *Service) Balls(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]BallLog, int64, error) {
	if err := s.run(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.ListBalls(ctx, id, f, page, pageSize)
}

func championCounts(champions []string) map[string]int {
	counts := make(map[string]int)
	for _, team := range champions {
		counts[team]++
	}
	return counts
}

func top(players []reward.PlayerSummary, n int) []reward.PlayerSummary {
	if len(players) > n {
		players = players[:n]
	}
	return slices.Clone(players)
}
