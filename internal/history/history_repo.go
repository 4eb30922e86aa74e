package history

import (
	"context"
	"errors"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryBatchSize is how many deliveries StreamDeliveries loads per query.
const DeliveryBatchSize = 5000

// Repository defines the queries the catalog builder and the ingestion
// endpoints need.
type Repository interface {
	LoadUniverse(ctx context.Context) (*bracket.Universe, error)
	// StreamDeliveries calls fn with consecutive batches ordered by id.
	StreamDeliveries(ctx context.Context, fn func([]Delivery) error) error
	TossRecords(ctx context.Context) ([]TossRecord, error)

	UpsertVenue(ctx context.Context, v *Venue) error
	UpsertTeam(ctx context.Context, t *Team) error
	UpsertPlayers(ctx context.Context, players []Player) error
	CreateMatch(ctx context.Context, m *HistoricalMatch) error
	GetMatchByID(ctx context.Context, id uint) (*HistoricalMatch, error)
	GetMatches(ctx context.Context, page, pageSize int) ([]HistoricalMatch, int64, error)

	// Transaction support
	WithTransaction(txFunc func(Repository) error) error
}

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// WithTransaction implements transaction support
func (r *GormRepository) WithTransaction(txFunc func(Repository) error) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	txRepo := &GormRepository{db: tx}
	err := txFunc(txRepo)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *GormRepository) codes(ctx context.Context, model interface{}) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(model).Order("code").Pluck("code", &out).Error
	return out, err
}

// LoadUniverse returns every known venue, team and player code.
func (r *GormRepository) LoadUniverse(ctx context.Context) (*bracket.Universe, error) {
	venues, err := r.codes(ctx, &Venue{})
	if err != nil {
		return nil, err
	}
	teams, err := r.codes(ctx, &Team{})
	if err != nil {
		return nil, err
	}
	players, err := r.codes(ctx, &Player{})
	if err != nil {
		return nil, err
	}
	return bracket.NewUniverse(venues, teams, players), nil
}

func (r *GormRepository) StreamDeliveries(ctx context.Context, fn func([]Delivery) error) error {
	var batch []Delivery
	return r.db.WithContext(ctx).Model(&Delivery{}).
		FindInBatches(&batch, DeliveryBatchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

func (r *GormRepository) TossRecords(ctx context.Context) ([]TossRecord, error) {
	var out []TossRecord
	err := r.db.WithContext(ctx).Model(&HistoricalMatch{}).
		Select("venue_code, toss_winner, toss_decision").
		Where("toss_winner <> '' AND toss_decision <> ''").
		Order("id").
		Scan(&out).Error
	return out, err
}

func (r *GormRepository) UpsertVenue(ctx context.Context, v *Venue) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(v).Error
}

func (r *GormRepository) UpsertTeam(ctx context.Context, t *Team) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(t).Error
}

// UpsertPlayers inserts unknown players and moves known ones to their
// listed team.
func (r *GormRepository) UpsertPlayers(ctx context.Context, players []Player) error {
	if len(players) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"team_code", "updated_at"}),
	}).CreateInBatches(players, 200).Error
}

// CreateMatch stores the match and its deliveries.
func (r *GormRepository) CreateMatch(ctx context.Context, m *HistoricalMatch) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{CreateBatchSize: 500}).Create(m).Error
}

func (r *GormRepository) GetMatchByID(ctx context.Context, id uint) (*HistoricalMatch, error) {
	var m HistoricalMatch
	err := r.db.WithContext(ctx).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMatches returns a page of matches without their deliveries.
func (r *GormRepository) GetMatches(ctx context.Context, page, pageSize int) ([]HistoricalMatch, int64, error) {
	var (
		matches []HistoricalMatch
		total   int64
	)
	db := r.db.WithContext(ctx).Model(&HistoricalMatch{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := db.Order("id DESC").Offset(offset).Limit(pageSize).Find(&matches).Error; err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}
