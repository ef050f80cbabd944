package rev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Client implements the enumeration port.
var _ driven.OrderSource = (*Client)(nil)

// listOrdersPayload is the wire shape of the listing endpoint. Orders are
// kept raw so each one can be decoded individually without losing the
// verbatim record.
type listOrdersPayload struct {
	TotalCount     int               `json:"total_count"`
	ResultsPerPage int               `json:"results_per_page"`
	Page           int               `json:"page"`
	Orders         []json.RawMessage `json:"orders"`
}

// orderPayload is the wire shape of one order at either hydration level.
type orderPayload struct {
	OrderNumber string              `json:"order_number"`
	Status      string              `json:"status"`
	PlacedOn    string              `json:"placed_on"`
	Attachments []attachmentPayload `json:"attachments"`
}

// placedOnFormats are the accepted placed_on layouts, tried in order.
var placedOnFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parsePlacedOn parses a placed_on value. Unparseable values yield nil
// rather than an error; such orders are excluded by a --since cut-off.
func parsePlacedOn(s string) *time.Time {
	for _, layout := range placedOnFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseOrder decodes one raw order record into the domain type, keeping the
// verbatim bytes for metadata persistence.
func parseOrder(raw json.RawMessage) (domain.Order, error) {
	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Order{}, &DecodeError{Err: err}
	}

	order := domain.Order{
		OrderNumber: payload.OrderNumber,
		Status:      payload.Status,
		Raw:         raw,
	}
	if payload.PlacedOn != "" {
		order.PlacedOn = parsePlacedOn(payload.PlacedOn)
	}
	for _, att := range payload.Attachments {
		order.Attachments = append(order.Attachments, att.toDomain())
	}

	return order, nil
}

// ListPage fetches one zero-based page of order summaries.
func (c *Client) ListPage(ctx context.Context, page, pageSize int) (*domain.OrderPage, error) {
	params := url.Values{}
	params.Set("page", itoa(page))
	params.Set("results_per_page", itoa(pageSize))

	var payload listOrdersPayload
	if err := c.GetJSON(ctx, "/orders", params, &payload); err != nil {
		return nil, fmt.Errorf("list orders page %d: %w", page, err)
	}

	result := &domain.OrderPage{
		TotalCount:     payload.TotalCount,
		Page:           payload.Page,
		ResultsPerPage: payload.ResultsPerPage,
	}
	for _, raw := range payload.Orders {
		order, err := parseOrder(raw)
		if err != nil {
			return nil, fmt.Errorf("list orders page %d: %w", page, err)
		}
		result.Orders = append(result.Orders, order)
	}

	return result, nil
}

// Orders walks the listing lazily from page zero. Pagination terminates
// exactly when a page returns zero orders; the server-reported total count
// is logged for progress but never trusted for termination. A since cut-off
// filters client-side and never stops the walk early, because listing order
// carries no recency guarantee.
func (c *Client) Orders(ctx context.Context, pageSize int, since *time.Time) (<-chan domain.Order, <-chan error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	orders := make(chan domain.Order)
	errs := make(chan error, 1)

	go func() {
		defer close(orders)
		defer close(errs)

		seen := 0
		for page := 0; ; page++ {
			result, err := c.ListPage(ctx, page, pageSize)
			if err != nil {
				switch {
				case IsRateLimited(err):
					logger.Warn("Rate limited while listing orders; completed downloads are preserved in the index")
				case IsDecode(err):
					logger.Warn("Malformed listing response on page %d", page)
				}
				errs <- err
				return
			}
			if len(result.Orders) == 0 {
				logger.Debug("Enumeration finished: %d orders over %d pages (server total %d)",
					seen, page, result.TotalCount)
				return
			}
			seen += len(result.Orders)

			for _, order := range result.Orders {
				if since != nil && !order.PlacedOnOrAfter(*since) {
					continue
				}
				select {
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				case orders <- order:
				}
			}
		}
	}()

	return orders, errs
}

// OrderDetail hydrates one order, attachments included.
func (c *Client) OrderDetail(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var raw json.RawMessage
	if err := c.GetJSON(ctx, "/orders/"+url.PathEscape(orderNumber), nil, &raw); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderNumber, err)
	}

	order, err := parseOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderNumber, err)
	}
	return &order, nil
}
