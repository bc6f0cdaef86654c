package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
	"github.com/polkiloo/sheetsync/internal/domain/repository"
)

// Sheet names and column spans. Row 1 of every sheet is a header.
const (
	ordersSheet     = "orders"
	orderItemsSheet = "order_items"
	productsSheet   = "products"

	ordersLastCol   = "I"
	itemsLastCol    = "F"
	productsLastCol = "H"

	firstDataRow = 2
)

// Options configures the spreadsheet connection.
type Options struct {
	SpreadsheetID string
	ClientEmail   string
	PrivateKey    string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// Storage keeps orders, item logs and products in one spreadsheet.
type Storage struct {
	values        valuesAPI
	spreadsheetID string
	logger        *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type orderItemRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

// New authenticates with a service account and returns the storage.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Storage, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id must be provided")
	}
	creds := &jwt.Config{
		Email:      opts.ClientEmail,
		PrivateKey: []byte(opts.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(creds.Client(ctx))}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newStorage(serviceValues{svc: svc}, opts.SpreadsheetID, logger), nil
}

func newStorage(values valuesAPI, spreadsheetID string, logger *slog.Logger) *Storage {
	return &Storage{values: values, spreadsheetID: spreadsheetID, logger: logger}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) OrderItems() repository.OrderItemRepository {
	return &orderItemRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func dataRange(sheet, lastCol string) string {
	return fmt.Sprintf("%s!A%d:%s", sheet, firstDataRow, lastCol)
}

func rowRange(sheet, fromCol, toCol string, row int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, fromCol, row, toCol, row)
}

// locate scans column A for key and returns the matching cells and their
// sheet row number.
func (s *Storage) locate(ctx context.Context, sheet, lastCol, key string) ([]any, int, error) {
	rows, err := s.values.Get(ctx, s.spreadsheetID, dataRange(sheet, lastCol))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", sheet, err)
	}
	key = strings.TrimSpace(key)
	for i, row := range rows {
		if strings.TrimSpace(cellString(row, 0)) == key {
			return row, firstDataRow + i, nil
		}
	}
	return nil, 0, domainErrors.ErrNotFound
}

// --- OrderRepository implementation ---

func (r *orderRepository) Find(ctx context.Context, orderID string) (*model.OrderRow, error) {
	cells, _, err := r.storage.locate(ctx, ordersSheet, ordersLastCol, orderID)
	if err != nil {
		return nil, err
	}
	row := decodeOrder(cells)
	return &row, nil
}

func (r *orderRepository) Save(ctx context.Context, row model.OrderRow) error {
	s := r.storage
	values := [][]any{encodeOrder(row)}

	_, n, err := s.locate(ctx, ordersSheet, ordersLastCol, row.OrderID)
	switch {
	case err == nil:
		return s.values.Update(ctx, s.spreadsheetID, rowRange(ordersSheet, "A", ordersLastCol, n), values)
	case errors.Is(err, domainErrors.ErrNotFound):
		return s.values.Append(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:%s", ordersSheet, ordersLastCol), values)
	default:
		return err
	}
}

// --- OrderItemRepository implementation ---

func (r *orderItemRepository) Append(ctx context.Context, rows []model.OrderItemRow) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, encodeOrderItem(row))
	}
	s := r.storage
	return s.values.Append(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:%s", orderItemsSheet, itemsLastCol), values)
}

// --- ProductRepository implementation ---

func (r *productRepository) FindByVariant(ctx context.Context, variantID string) (*model.ProductRow, error) {
	cells, _, err := r.storage.locate(ctx, productsSheet, productsLastCol, variantID)
	if err != nil {
		return nil, err
	}
	row := decodeProduct(cells)
	return &row, nil
}

// UpdateStock writes only the on-hand and reserved columns.
func (r *productRepository) UpdateStock(ctx context.Context, variantID string, onHand, reserved int64) error {
	s := r.storage
	_, n, err := s.locate(ctx, productsSheet, productsLastCol, variantID)
	if err != nil {
		return err
	}
	return s.values.Update(ctx, s.spreadsheetID, rowRange(productsSheet, "D", "E", n), [][]any{{onHand, reserved}})
}

func (r *productRepository) Upsert(ctx context.Context, row model.ProductRow) error {
	s := r.storage
	values := [][]any{encodeProduct(row)}

	_, n, err := s.locate(ctx, productsSheet, productsLastCol, row.VariantID)
	switch {
	case err == nil:
		return s.values.Update(ctx, s.spreadsheetID, rowRange(productsSheet, "A", productsLastCol, n), values)
	case errors.Is(err, domainErrors.ErrNotFound):
		return s.values.Append(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:%s", productsSheet, productsLastCol), values)
	default:
		return err
	}
}

// ReplaceAll overwrites the table from the first data row and clears rows
// left over from a larger previous catalog.
func (r *productRepository) ReplaceAll(ctx context.Context, rows []model.ProductRow) error {
	s := r.storage
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, encodeProduct(row))
	}

	if len(values) > 0 {
		lastRow := firstDataRow + len(values) - 1
		rng := fmt.Sprintf("%s!A%d:%s%d", productsSheet, firstDataRow, productsLastCol, lastRow)
		if err := s.values.Update(ctx, s.spreadsheetID, rng, values); err != nil {
			return fmt.Errorf("write products: %w", err)
		}
	}

	tail := fmt.Sprintf("%s!A%d:%s", productsSheet, firstDataRow+len(values), productsLastCol)
	if err := s.values.Clear(ctx, s.spreadsheetID, tail); err != nil {
		return fmt.Errorf("clear stale products: %w", err)
	}
	s.logger.Debug("products replaced", slog.Int("rows", len(values)))
	return nil
}
