package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/revsync-cli/internal/core/domain"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/revsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/revsync-cli/internal/logger"
)

// Ensure Syncer implements the interface.
var _ driving.SyncRunner = (*Syncer)(nil)

// Syncer mirrors completed remote orders into the export tree, exactly once
// per attachment. Resumability rests entirely on the download index: every
// run re-enumerates from page zero and skips what the index already holds.
type Syncer struct {
	source  driven.OrderSource
	fetcher driven.ContentFetcher
	store   driven.ExportStore
	index   driven.DownloadIndex
}

// NewSyncer creates a sync runner from its driven ports.
func NewSyncer(
	source driven.OrderSource,
	fetcher driven.ContentFetcher,
	store driven.ExportStore,
	index driven.DownloadIndex,
) *Syncer {
	return &Syncer{
		source:  source,
		fetcher: fetcher,
		store:   store,
		index:   index,
	}
}

// attachmentOutcome is the result of processing one attachment, applied to
// the report under a single lock when workers run concurrently.
type attachmentOutcome struct {
	event driving.SyncEvent
}

// Sync runs one synchronisation pass. Failures are scoped as narrowly as
// possible: a failed attachment is recorded and its order continues, a
// failed order is recorded and the run continues. The run itself fails only
// when enumeration dies or every attempted attachment failed.
func (s *Syncer) Sync(ctx context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	start := time.Now()
	report := &driving.SyncReport{RunID: uuid.NewString()}
	emit := opts.Events
	if emit == nil {
		emit = func(driving.SyncEvent) {}
	}

	orders, errs := s.source.Orders(ctx, opts.PageSize, opts.Since)

	for order := range orders {
		// Cancellation is checked between orders, never mid-write.
		if ctx.Err() != nil {
			break
		}
		if !order.Completed() {
			logger.Debug("Skipping order %s (status %q)", order.OrderNumber, order.Status)
			continue
		}
		s.syncOrder(ctx, order.OrderNumber, opts, report, emit)
	}

	enumErr := <-errs
	if enumErr == nil {
		// A cancelled run is an interrupted run, even when enumeration
		// happened to finish cleanly first.
		enumErr = ctx.Err()
	}

	report.Elapsed = time.Since(start)
	emit(driving.SyncEvent{Kind: driving.EventSyncFinished})

	if enumErr != nil {
		report.Failures = append(report.Failures, driving.Failure{Err: enumErr})
		return report, enumErr
	}
	if report.Attempted() > 0 && report.Downloaded == 0 {
		return report, domain.ErrAllAttachmentsFailed
	}
	return report, nil
}

// syncOrder hydrates one order, persists its metadata, then processes its
// attachments. Metadata is always written before any attachment write
// begins, so an interruption mid-attachments still leaves valid, if
// incomplete, order metadata on disk.
func (s *Syncer) syncOrder(
	ctx context.Context,
	orderNumber string,
	opts driving.SyncOptions,
	report *driving.SyncReport,
	emit driving.EventSink,
) {
	order, err := s.source.OrderDetail(ctx, orderNumber)
	if err != nil {
		report.Failures = append(report.Failures, driving.Failure{OrderNumber: orderNumber, Err: err})
		emit(driving.SyncEvent{Kind: driving.EventOrderFailed, OrderNumber: orderNumber, Err: err})
		return
	}
	report.OrdersScanned++
	emit(driving.SyncEvent{Kind: driving.EventOrderStarted, OrderNumber: orderNumber})

	if _, err := s.store.SaveOrderMetadata(order); err != nil {
		report.Failures = append(report.Failures, driving.Failure{OrderNumber: orderNumber, Err: err})
		emit(driving.SyncEvent{Kind: driving.EventOrderFailed, OrderNumber: orderNumber, Err: err})
		return
	}

	if opts.Concurrency > 1 {
		s.syncAttachmentsConcurrent(ctx, order, opts, report, emit)
		return
	}

	for i := range order.Attachments {
		// Cancellation is checked between attachments.
		if ctx.Err() != nil {
			return
		}
		outcome := s.processAttachment(ctx, order.OrderNumber, order.Attachments[i], opts)
		applyOutcome(report, outcome, emit)
	}
}

// syncAttachmentsConcurrent processes one order's attachments with a bounded
// worker pool. Attachments may complete in any order; the index is the only
// shared state and its reads may race (two workers both deciding "not yet
// downloaded" costs a redundant fetch, nothing worse). Orders are never
// processed concurrently with each other.
func (s *Syncer) syncAttachmentsConcurrent(
	ctx context.Context,
	order *domain.Order,
	opts driving.SyncOptions,
	report *driving.SyncReport,
	emit driving.EventSink,
) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range order.Attachments {
		if gctx.Err() != nil {
			break
		}
		att := order.Attachments[i]
		g.Go(func() error {
			outcome := s.processAttachment(gctx, order.OrderNumber, att, opts)
			mu.Lock()
			applyOutcome(report, outcome, emit)
			mu.Unlock()
			return nil
		})
	}

	// Workers record their own failures; Wait only synchronises.
	_ = g.Wait()
}

// applyOutcome folds one attachment outcome into the report and emits its
// event. Callers serialise access to the report.
func applyOutcome(report *driving.SyncReport, outcome attachmentOutcome, emit driving.EventSink) {
	switch outcome.event.Kind {
	case driving.EventAttachmentSkipped:
		report.Skipped++
	case driving.EventAttachmentExcluded:
		report.Excluded++
	case driving.EventAttachmentSaved:
		report.Downloaded++
	case driving.EventAttachmentFailed:
		att := outcome.event.Attachment
		report.Failures = append(report.Failures, driving.Failure{
			OrderNumber:  outcome.event.OrderNumber,
			AttachmentID: att.ID,
			Err:          outcome.event.Err,
		})
	}
	emit(outcome.event)
}

// processAttachment runs the per-attachment decision path: index check,
// classification, include filter, metadata hydration, content fetch, write,
// then mark. The write lands at its final path before the index is marked;
// dying between the two steps costs a redundant re-fetch next run, never a
// silent loss. The reverse order could lose data permanently and is not an
// option.
func (s *Syncer) processAttachment(
	ctx context.Context,
	orderNumber string,
	att domain.Attachment,
	opts driving.SyncOptions,
) attachmentOutcome {
	fail := func(err error) attachmentOutcome {
		return attachmentOutcome{event: driving.SyncEvent{
			Kind:        driving.EventAttachmentFailed,
			OrderNumber: orderNumber,
			Attachment:  &att,
			Err:         err,
		}}
	}

	if s.index.IsDownloaded(att.ID) {
		logger.Debug("Skipping attachment %s (already downloaded)", att.ID)
		return attachmentOutcome{event: driving.SyncEvent{
			Kind:        driving.EventAttachmentSkipped,
			OrderNumber: orderNumber,
			Attachment:  &att,
		}}
	}

	category := domain.Classify(att)
	if excluded(category, opts) {
		return attachmentOutcome{event: driving.SyncEvent{
			Kind:        driving.EventAttachmentExcluded,
			OrderNumber: orderNumber,
			Attachment:  &att,
			Category:    category,
		}}
	}

	// Some naming-relevant fields exist only at detail granularity.
	full, err := s.fetcher.AttachmentDetail(ctx, att.ID)
	if err != nil {
		return fail(err)
	}

	formats := domain.PreferredFormats(category)
	content, usedFormat, err := s.fetcher.Content(ctx, att.ID, formats)
	if err != nil {
		return fail(err)
	}
	defer content.Close()

	ext := domain.ResolveExtension(*full, category, usedFormat)
	path, err := s.store.SaveAttachment(orderNumber, *full, category, ext, content)
	if err != nil {
		return fail(err)
	}

	// Mark only after the write is confirmed complete. A failed mark leaves
	// the file in place unmarked; the next run re-fetches and overwrites.
	if err := s.index.MarkDownloaded(ctx, att.ID); err != nil {
		return fail(err)
	}

	return attachmentOutcome{event: driving.SyncEvent{
		Kind:        driving.EventAttachmentSaved,
		OrderNumber: orderNumber,
		Attachment:  full,
		Category:    category,
		Path:        path,
	}}
}

// excluded applies the include options to a category.
func excluded(c domain.Category, opts driving.SyncOptions) bool {
	switch c {
	case domain.CategoryMedia:
		return !opts.IncludeMedia
	case domain.CategoryTranscript, domain.CategoryCaption:
		return !opts.IncludeTranscripts
	default:
		return false
	}
}

// Plan walks the identical decision path as Sync without writing anything:
// no metadata writes, no content fetches, no index marks.
func (s *Syncer) Plan(ctx context.Context, opts driving.SyncOptions) ([]driving.PlannedAction, error) {
	// Cancelling on early abort releases the enumeration goroutine, which
	// would otherwise block sending into an abandoned channel.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var actions []driving.PlannedAction
	var planErr error

	orders, errs := s.source.Orders(ctx, opts.PageSize, opts.Since)

	for order := range orders {
		if planErr != nil || ctx.Err() != nil {
			// Keep draining so the producer can finish and close errs.
			continue
		}
		if !order.Completed() {
			continue
		}

		full, err := s.source.OrderDetail(ctx, order.OrderNumber)
		if err != nil {
			planErr = err
			cancel()
			continue
		}

		for _, att := range full.Attachments {
			action := driving.PlannedAction{
				OrderNumber: full.OrderNumber,
				Attachment:  att,
				Category:    domain.Classify(att),
			}

			switch {
			case s.index.IsDownloaded(att.ID):
				action.Type = driving.ActionSkip
			case excluded(action.Category, opts):
				action.Type = driving.ActionExclude
			default:
				action.Type = driving.ActionDownload
				if formats := domain.PreferredFormats(action.Category); len(formats) > 0 {
					action.Format = formats[0]
				}
			}
			actions = append(actions, action)
		}
	}

	enumErr := <-errs
	if planErr != nil {
		// The detail failure caused the cancellation; it is the real error.
		return nil, planErr
	}
	if enumErr != nil {
		return nil, enumErr
	}
	return actions, nil
}
