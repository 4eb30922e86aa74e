package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
)

// BuildCatalog fits a catalog from every stored delivery and toss.
func BuildCatalog(ctx context.Context, repo Repository, alpha float64) (*catalog.Catalog, error) {
	b := catalog.NewBuilder(alpha)
	err := repo.StreamDeliveries(ctx, func(batch []Delivery) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, d := range batch {
			b.ObserveDelivery(d.Observation())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stream deliveries: %w", err)
	}

	tosses, err := repo.TossRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load toss records: %w", err)
	}
	for _, t := range tosses {
		b.ObserveToss(t.Observation())
	}
	return b.Build()
}

// Source hands out the universe and the fitted catalog, loading each once
// until Invalidate is called. It is safe for concurrent use.
type Source struct {
	repo   Repository
	alpha  float64
	logger zerolog.Logger

	mu       sync.Mutex
	universe *bracket.Universe
	cat      *catalog.Catalog
}

func NewSource(repo Repository, alpha float64, logger zerolog.Logger) *Source {
	return &Source{repo: repo, alpha: alpha, logger: logger}
}

func (s *Source) Universe(ctx context.Context) (*bracket.Universe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.universe != nil {
		return s.universe, nil
	}
	u, err := s.repo.LoadUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	s.universe = u
	return u, nil
}

// Catalog returns the cached catalog, fitting it on first use.
func (s *Source) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat != nil {
		return s.cat, nil
	}
	started := time.Now()
	cat, err := BuildCatalog(ctx, s.repo, s.alpha)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("bowler_contexts", cat.BowlerContexts()).
		Dur("elapsed", time.Since(started)).
		Msg("catalog fitted")
	s.cat = cat
	return cat, nil
}

// Invalidate drops both cached values.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.universe, s.cat = nil, nil
	s.mu.Unlock()
}
