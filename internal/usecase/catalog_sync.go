package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// CatalogMode selects how flattened rows are written to the product table.
type CatalogMode string

const (
	// CatalogModeBulk overwrites the whole table in one write.
	CatalogModeBulk CatalogMode = "bulk"
	// CatalogModeUpsert writes each row through a lookup by variant id.
	CatalogModeUpsert CatalogMode = "upsert"
)

// CatalogSync replaces the product table with the commerce catalog.
type CatalogSync struct {
	commerce CommerceSource
	products repository.ProductRepository
	names    NameResolver
	mode     CatalogMode
	now      func() time.Time
	logger   *slog.Logger

	group singleflight.Group
}

// NewCatalogSync constructs CatalogSync.
func NewCatalogSync(commerce CommerceSource, products repository.ProductRepository, names NameResolver, mode CatalogMode, logger *slog.Logger) *CatalogSync {
	if mode != CatalogModeUpsert {
		mode = CatalogModeBulk
	}
	return &CatalogSync{
		commerce: commerce,
		products: products,
		names:    names,
		mode:     mode,
		now:      time.Now,
		logger:   logger,
	}
}

// Sync fetches every product and writes its variants. Concurrent callers
// share the result of the run already in flight. It returns the number of
// rows written.
//
// The shared run is detached from the caller that started it, so a caller
// giving up only stops its own wait.
func (s *CatalogSync) Sync(ctx context.Context) (int, error) {
	ch := s.group.DoChan("catalog", func() (any, error) {
		return s.sync(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("catalog sync joined in-flight run")
		}
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (s *CatalogSync) sync(ctx context.Context) (int, error) {
	products, err := s.commerce.ListAllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list products: %w", domainErrors.ErrUpstreamFetch, err)
	}

	rows := Flatten(products, s.names, s.now())
	if len(rows) == 0 {
		return 0, domainErrors.ErrEmptyCatalog
	}

	switch s.mode {
	case CatalogModeUpsert:
		for _, row := range rows {
			if err := s.products.Upsert(ctx, row); err != nil {
				return 0, fmt.Errorf("%w: upsert variant %s: %w", domainErrors.ErrStoreWrite, row.VariantID, err)
			}
		}
	default:
		if err := s.products.ReplaceAll(ctx, rows); err != nil {
			return 0, fmt.Errorf("%w: replace products: %w", domainErrors.ErrStoreWrite, err)
		}
	}

	s.logger.Info("catalog synced",
		slog.Int("products", len(products)),
		slog.Int("rows", len(rows)),
		slog.String("mode", string(s.mode)),
	)
	return len(rows), nil
}
