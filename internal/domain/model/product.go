package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LocalizedName holds a product name keyed by locale. A plain JSON string
// decodes into the empty locale key.
type LocalizedName map[string]string

// UnmarshalJSON accepts either a locale map or a plain string.
func (n *LocalizedName) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = nil
		return nil
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*n = LocalizedName{"": plain}
		return nil
	}
	var byLocale map[string]string
	if err := json.Unmarshal(data, &byLocale); err != nil {
		return err
	}
	*n = byLocale
	return nil
}

// Product is a catalog entry with its sellable variants.
type Product struct {
	ID       string
	Name     LocalizedName
	Variants []Variant
}

// Variant is a sellable variation of a product.
type Variant struct {
	ID        string
	Price     decimal.Decimal
	Stock     *int64
	SKU       string
	Available *bool
}

// ProductRow is the stored representation of a variant, one per variant id.
type ProductRow struct {
	VariantID string
	Name      string
	Price     decimal.Decimal
	OnHand    int64
	Reserved  int64
	SKU       string
	Available bool
	SyncedAt  string
}
