package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// Cells come back unformatted, so numbers arrive as float64 and booleans as
// bool. Anything unreadable decodes to the zero value.

func cellString(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func cellInt(row []any, i int) int64 {
	text := strings.TrimSpace(cellString(row, i))
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return int64(f)
	}
	return 0
}

func cellBool(row []any, i int) bool {
	return strings.EqualFold(strings.TrimSpace(cellString(row, i)), "true")
}

func cellDecimal(row []any, i int) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(cellString(row, i)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func encodeOrder(r model.OrderRow) []any {
	return []any{
		r.OrderID,
		string(r.Status),
		r.CreatedAt,
		r.PaidAt,
		r.ShippedAt,
		r.UpdatedAt,
		boolCell(r.StockDiscounted),
		boolCell(r.StockReserved),
		string(r.LastEvent),
	}
}

func decodeOrder(row []any) model.OrderRow {
	return model.OrderRow{
		OrderID:         cellString(row, 0),
		Status:          model.OrderStatus(cellString(row, 1)),
		CreatedAt:       cellString(row, 2),
		PaidAt:          cellString(row, 3),
		ShippedAt:       cellString(row, 4),
		UpdatedAt:       cellString(row, 5),
		StockDiscounted: cellBool(row, 6),
		StockReserved:   cellBool(row, 7),
		LastEvent:       model.Event(cellString(row, 8)),
	}
}

func encodeOrderItem(r model.OrderItemRow) []any {
	return []any{r.ID, r.OrderID, r.VariantID, r.Quantity, r.Price.String(), string(r.Event)}
}

func encodeProduct(r model.ProductRow) []any {
	return []any{
		r.VariantID,
		r.Name,
		r.Price.String(),
		r.OnHand,
		r.Reserved,
		r.SKU,
		boolCell(r.Available),
		r.SyncedAt,
	}
}

func decodeProduct(row []any) model.ProductRow {
	return model.ProductRow{
		VariantID: cellString(row, 0),
		Name:      cellString(row, 1),
		Price:     cellDecimal(row, 2),
		OnHand:    cellInt(row, 3),
		Reserved:  cellInt(row, 4),
		SKU:       cellString(row, 5),
		Available: cellBool(row, 6),
		SyncedAt:  cellString(row, 7),
	}
}
