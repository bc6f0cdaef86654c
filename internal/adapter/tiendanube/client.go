package tiendanube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/sheetsync/internal/domain/errors"
	"github.com/polkiloo/sheetsync/internal/domain/model"
)

// DefaultPageSize is the largest page the products endpoint serves.
const DefaultPageSize = 200

// TooManyRequestsError represents rate limiting signal from the commerce API.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Options configures HTTPClient.
type Options struct {
	BaseURL   string
	StoreID   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	PageSize  int
}

// HTTPClient reads orders and products from the commerce REST API.
type HTTPClient struct {
	baseURL    *url.URL
	storeID    string
	token      string
	userAgent  string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates the commerce client.
func NewHTTPClient(opts Options, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse commerce url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("commerce url must be absolute")
	}
	if opts.StoreID == "" {
		return nil, fmt.Errorf("store id must be provided")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:   parsed,
		storeID:   opts.StoreID,
		token:     opts.Token,
		userAgent: opts.UserAgent,
		pageSize:  opts.PageSize,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

// GetOrder fetches the full order record.
func (c *HTTPClient) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var payload orderPayload
	if err := c.get(ctx, c.endpoint(nil, "orders", orderID), &payload); err != nil {
		return nil, err
	}
	return payload.toModel(), nil
}

// ListAllProducts walks the product pages until a short page, or a missing
// page past the last one, is returned.
func (c *HTTPClient) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	for page := 1; ; page++ {
		query := url.Values{
			"page":     []string{strconv.Itoa(page)},
			"per_page": []string{strconv.Itoa(c.pageSize)},
		}

		var batch []productPayload
		err := c.get(ctx, c.endpoint(query, "products"), &batch)
		if err != nil {
			if page > 1 && errors.Is(err, domainErrors.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("products page %d: %w", page, err)
		}

		for _, p := range batch {
			products = append(products, p.toModel())
		}
		if len(batch) < c.pageSize {
			break
		}
	}
	return products, nil
}

func (c *HTTPClient) endpoint(query url.Values, segments ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path, c.storeID}, segments...)...)
	endpoint.RawQuery = query.Encode()
	return endpoint.String()
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authentication", "bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("decode commerce response: %w", err)
		}
		return nil
	case http.StatusNotFound:
		return domainErrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domainErrors.ErrUnauthorized
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("commerce request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("commerce api error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
