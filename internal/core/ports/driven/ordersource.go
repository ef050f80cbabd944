package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
)

// OrderSource enumerates orders from the remote account.
// Implementations handle pagination and authentication internally.
type OrderSource interface {
	// ListPage fetches one page of order summaries. Pages are zero-based.
	ListPage(ctx context.Context, page, pageSize int) (*domain.OrderPage, error)

	// Orders walks the full listing lazily and sends every order summary
	// passing the optional since cut-off. Pagination terminates exactly when
	// a page returns zero orders; the server total count is never trusted
	// for termination. Listing order is not assumed to correlate with
	// placement date, so a since cut-off never short-circuits the walk.
	//
	// The orders channel is closed when enumeration finishes. At most one
	// error is sent on the error channel; enumeration stops after it.
	// Restarting always re-paginates from page zero: resumability comes
	// from the download index, not from a remembered cursor.
	Orders(ctx context.Context, pageSize int, since *time.Time) (<-chan domain.Order, <-chan error)

	// OrderDetail hydrates a summary into a full order with attachments.
	OrderDetail(ctx context.Context, orderNumber string) (*domain.Order, error)
}
