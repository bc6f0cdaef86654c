package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type fakeCall struct {
	Method string
	Range  string
	Rows   [][]any
}

// fakeValues is an in-memory grid addressed with A1 ranges. Row 1 of each
// sheet is the header.
type fakeValues struct {
	mu    sync.Mutex
	grids map[string][][]any
	calls []fakeCall

	getErr    error
	appendErr error
	updateErr error
	clearErr  error
}

func newFakeValues() *fakeValues {
	return &fakeValues{grids: map[string][][]any{
		ordersSheet:     {{"order_id", "status", "created_at", "paid_at", "shipped_at", "updated_at", "stock_discounted", "stock_reserved", "last_event"}},
		orderItemsSheet: {{"id", "order_id", "variant_id", "quantity", "price", "event"}},
		productsSheet:   {{"variant_id", "name", "price", "on_hand", "reserved", "sku", "available", "synced_at"}},
	}}
}

type a1 struct {
	sheet          string
	fromCol, toCol int
	fromRow, toRow int
	hasFrom, hasTo bool
}

func parseA1(rng string) a1 {
	sheet, cells, _ := strings.Cut(rng, "!")
	from, to, _ := strings.Cut(cells, ":")
	r := a1{sheet: sheet}
	r.fromCol, r.fromRow, r.hasFrom = parseCell(from)
	r.toCol, r.toRow, r.hasTo = parseCell(to)
	return r
}

func parseCell(cell string) (col, row int, hasRow bool) {
	col = int(cell[0] - 'A')
	if len(cell) > 1 {
		n, err := strconv.Atoi(cell[1:])
		if err != nil {
			panic(fmt.Sprintf("bad cell %q", cell))
		}
		return col, n, true
	}
	return col, 0, false
}

func (f *fakeValues) record(method, rng string, rows [][]any) {
	f.calls = append(f.calls, fakeCall{Method: method, Range: rng, Rows: rows})
}

func (f *fakeValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get", rng, nil)
	if f.getErr != nil {
		return nil, f.getErr
	}
	r := parseA1(rng)
	grid := f.grids[r.sheet]
	var out [][]any
	for i := r.fromRow - 1; i < len(grid); i++ {
		if r.hasTo && i > r.toRow-1 {
			break
		}
		row := grid[i]
		end := r.toCol + 1
		if end > len(row) {
			end = len(row)
		}
		start := r.fromCol
		if start > end {
			start = end
		}
		out = append(out, append([]any(nil), row[start:end]...))
	}
	return out, nil
}

func (f *fakeValues) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("append", rng, rows)
	if f.appendErr != nil {
		return f.appendErr
	}
	r := parseA1(rng)
	for _, row := range rows {
		f.grids[r.sheet] = append(f.grids[r.sheet], normalize(row))
	}
	return nil
}

func (f *fakeValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update", rng, rows)
	if f.updateErr != nil {
		return f.updateErr
	}
	r := parseA1(rng)
	grid := f.grids[r.sheet]
	for i, row := range rows {
		idx := r.fromRow - 1 + i
		for len(grid) <= idx {
			grid = append(grid, nil)
		}
		target := grid[idx]
		for len(target) < r.fromCol+len(row) {
			target = append(target, "")
		}
		for j, v := range normalize(row) {
			target[r.fromCol+j] = v
		}
		grid[idx] = target
	}
	f.grids[r.sheet] = grid
	return nil
}

func (f *fakeValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clear", rng, nil)
	if f.clearErr != nil {
		return f.clearErr
	}
	r := parseA1(rng)
	grid := f.grids[r.sheet]
	if !r.hasTo && r.fromRow-1 < len(grid) {
		f.grids[r.sheet] = grid[:r.fromRow-1]
	}
	return nil
}

// normalize mimics unformatted reads: numbers become float64 and TRUE/FALSE
// become booleans.
func normalize(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case int64:
			out[i] = float64(x)
		case int:
			out[i] = float64(x)
		case string:
			switch {
			case x == "TRUE":
				out[i] = true
			case x == "FALSE":
				out[i] = false
			default:
				if f, err := strconv.ParseFloat(x, 64); err == nil {
					out[i] = f
				} else {
					out[i] = x
				}
			}
		default:
			out[i] = v
		}
	}
	return out
}

func (f *fakeValues) dataRows(sheet string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grids[sheet][1:]
}

func (f *fakeValues) callsOf(method string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}
