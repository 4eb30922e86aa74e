package forecast

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/models"
)

const insertBatchSize = 1000

// Filter narrows list queries to one scenario and, for balls, one match.
type Filter struct {
	Scenario *int
	MatchKey *int64
}

// Repository defines the persistence needed by the forecast service.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	// SaveOutcome updates the run's status columns and stores everything the
	// bracket produced. Ball logs are skipped unless withBalls is set.
	SaveOutcome(ctx context.Context, run *Run, out *bracket.Outcome, withBalls bool) error
	FailRun(ctx context.Context, id uuid.UUID, reason string) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, clientID string, page, pageSize int) ([]Run, int64, error)
	ListFixtures(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]FixtureOutcome, int64, error)
	ListStandings(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]ScenarioStanding, int64, error)
	ListRewards(ctx context.Context, id uuid.UUID, page, pageSize int) ([]PlayerReward, int64, error)
	ListBalls(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]BallLog, int64, error)
}

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateRun(ctx context.Context, run *Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *GormRepository) SaveOutcome(ctx context.Context, run *Run, out *bracket.Outcome, withBalls bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(run).Select("status", "completed_at", "champion_counts", "ball_count").Updates(run).Error; err != nil {
			return err
		}

		fixtures := make([]FixtureOutcome, 0, len(out.Fixtures))
		for _, f := range out.Fixtures {
			fixtures = append(fixtures, newFixtureOutcome(run.ID, f))
		}
		if err := createInBatches(tx, fixtures); err != nil {
			return err
		}

		standings := make([]ScenarioStanding, 0, len(out.Standings))
		for _, s := range out.Standings {
			standings = append(standings, ScenarioStanding{
				RunID:    run.ID,
				Scenario: s.Scenario,
				Seeds:    models.StringSlice(s.Seeds[:]),
				Table:    models.NewJSON(s.Table),
			})
		}
		if err := createInBatches(tx, standings); err != nil {
			return err
		}

		rewards := make([]PlayerReward, 0, len(out.Players))
		for i, p := range out.Players {
			rewards = append(rewards, newPlayerReward(run.ID, i+1, p))
		}
		if err := createInBatches(tx, rewards); err != nil {
			return err
		}

		if !withBalls {
			return nil
		}
		balls := make([]BallLog, 0, len(out.Balls))
		for _, b := range out.Balls {
			balls = append(balls, BallLog{RunID: run.ID, BallRecord: b})
		}
		return createInBatches(tx, balls)
	})
}

func createInBatches[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

func (r *GormRepository) FailRun(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": StatusFailed, "error": reason}).Error
}

// GetRun returns nil, nil when the run does not exist.
func (r *GormRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *GormRepository) ListRuns(ctx context.Context, clientID string, page, pageSize int) ([]Run, int64, error) {
	q := r.db.WithContext(ctx).Model(&Run{})
	if clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	return paginate[Run](q, "created_at DESC", page, pageSize)
}

func (r *GormRepository) ListFixtures(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]FixtureOutcome, int64, error) {
	q := r.db.WithContext(ctx).Model(&FixtureOutcome{}).Where("run_id = ?", id)
	if f.Scenario != nil {
		q = q.Where("scenario = ?", *f.Scenario)
	}
	return paginate[FixtureOutcome](q, "id", page, pageSize)
}

func (r *GormRepository) ListStandings(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]ScenarioStanding, int64, error) {
	q := r.db.WithContext(ctx).Model(&ScenarioStanding{}).Where("run_id = ?", id)
	if f.Scenario != nil {
		q = q.Where("scenario = ?", *f.Scenario)
	}
	return paginate[ScenarioStanding](q, "scenario", page, pageSize)
}

func (r *GormRepository) ListRewards(ctx context.Context, id uuid.UUID, page, pageSize int) ([]PlayerReward, int64, error) {
	q := r.db.WithContext(ctx).Model(&PlayerReward{}).Where("run_id = ?", id)
	return paginate[PlayerReward](q, "rank", page, pageSize)
}

func (r *GormRepository) ListBalls(ctx context.Context, id uuid.UUID, f Filter, page, pageSize int) ([]BallLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&BallLog{}).Where("run_id = ?", id)
	if f.Scenario != nil {
		q = q.Where("scenario = ?", *f.Scenario)
	}
	if f.MatchKey != nil {
		q = q.Where("match_key = ?", *f.MatchKey)
	}
	return paginate[BallLog](q, "id", page, pageSize)
}

func paginate[T any](q *gorm.DB, order string, page, pageSize int) ([]T, int64, error) {
	var (
		rows  []T
		total int64
	)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := q.Order(order).Offset(offset).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
