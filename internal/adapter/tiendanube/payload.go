package tiendanube

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// flexInt accepts a JSON integer or a numeric string.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var raw flexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		*i = 0
		return nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*i = flexInt(n)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("invalid integer %q", text)
	}
	*i = flexInt(f)
	return nil
}

type orderPayload struct {
	ID                flexString        `json:"id"`
	Status            flexString        `json:"status"`
	CreatedAt         flexString        `json:"created_at"`
	UpdatedAt         flexString        `json:"updated_at"`
	PaidAt            flexString        `json:"paid_at"`
	ShippedAt         flexString        `json:"shipped_at"`
	ShippingStatus    flexString        `json:"shipping_status"`
	FulfillmentStatus flexString        `json:"fulfillment_status"`
	Products          []lineItemPayload `json:"products"`
}

type lineItemPayload struct {
	VariantID flexString      `json:"variant_id"`
	Quantity  flexInt         `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type productPayload struct {
	ID       flexString          `json:"id"`
	Name     model.LocalizedName `json:"name"`
	Variants []variantPayload    `json:"variants"`
}

type variantPayload struct {
	ID        flexString      `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Stock     *flexInt        `json:"stock"`
	SKU       flexString      `json:"sku"`
	Available *bool           `json:"available"`
}

func (p orderPayload) toModel() *model.Order {
	order := &model.Order{
		ID:                string(p.ID),
		Status:            string(p.Status),
		CreatedAt:         string(p.CreatedAt),
		UpdatedAt:         string(p.UpdatedAt),
		PaidAt:            string(p.PaidAt),
		ShippedAt:         string(p.ShippedAt),
		ShippingStatus:    string(p.ShippingStatus),
		FulfillmentStatus: string(p.FulfillmentStatus),
		Items:             make([]model.LineItem, 0, len(p.Products)),
	}
	for _, item := range p.Products {
		order.Items = append(order.Items, model.LineItem{
			VariantID: string(item.VariantID),
			Quantity:  int64(item.Quantity),
			Price:     item.Price,
		})
	}
	return order
}

func (p productPayload) toModel() model.Product {
	product := model.Product{
		ID:       string(p.ID),
		Name:     p.Name,
		Variants: make([]model.Variant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		variant := model.Variant{
			ID:        string(v.ID),
			Price:     v.Price,
			SKU:       string(v.SKU),
			Available: v.Available,
		}
		if v.Stock != nil {
			stock := int64(*v.Stock)
			variant.Stock = &stock
		}
		product.Variants = append(product.Variants, variant)
	}
	return product
}
