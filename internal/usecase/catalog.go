package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// DefaultNameLocales is the locale preference used when none is configured.
var DefaultNameLocales = []string{"es", "es-AR", "pt"}

// NameResolver picks a display name out of a localized name map.
type NameResolver struct {
	locales  []string
	fallback string
}

// NewNameResolver constructs NameResolver. An empty preference list falls
// back to DefaultNameLocales.
func NewNameResolver(locales []string, fallback string) NameResolver {
	if len(locales) == 0 {
		locales = DefaultNameLocales
	}
	return NameResolver{locales: locales, fallback: fallback}
}

// Resolve returns the first non-empty name in preference order, then the
// first non-empty name by sorted locale key, then the fallback.
func (r NameResolver) Resolve(name model.LocalizedName) string {
	for _, locale := range r.locales {
		if v := strings.TrimSpace(name[locale]); v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(name))
	for k := range name {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(name[k]); v != "" {
			return v
		}
	}
	return r.fallback
}

// Flatten turns a product listing into one row per variant. Reserved stock
// starts at zero on every full sync.
func Flatten(products []model.Product, names NameResolver, now time.Time) []model.ProductRow {
	stamp := now.UTC().Format(TimestampLayout)

	var rows []model.ProductRow
	for _, p := range products {
		name := names.Resolve(p.Name)
		for _, v := range p.Variants {
			row := model.ProductRow{
				VariantID: v.ID,
				Name:      name,
				Price:     v.Price,
				SKU:       v.SKU,
				Available: true,
				SyncedAt:  stamp,
			}
			if v.Stock != nil {
				row.OnHand = *v.Stock
			}
			if v.Available != nil {
				row.Available = *v.Available
			}
			rows = append(rows, row)
		}
	}
	return rows
}
