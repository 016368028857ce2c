package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Selectors for the place detail page and its reviews dialog.
const (
	reviewsButtonSelector = `button[jsaction*="pane.rating.moreReviews"]`
	sortButtonSelector    = `button[aria-label="Sort reviews"]`
	sortNewestSelector    = `span[aria-label="Most recent"]`
	reviewsDialogSelector = `div[role="dialog"]`
	reviewsPanelSelector  = `div[role="dialog"] div[tabindex="-1"]`
)

const (
	// navigateBackoffStep spaces navigation retries linearly: 1s, 2s, 3s.
	navigateBackoffStep = time.Second
	// detailSettleDelay lets the detail pane finish rendering after each
	// navigation or dialog transition.
	detailSettleDelay = 2 * time.Second
	// sortSettleDelay is the shorter pause between the sort-menu clicks.
	sortSettleDelay = time.Second
)

// PlaceJob deepens one venue stub with a dedicated page visit. The job owns
// exclusive write access to its venue; a terminal failure leaves the venue
// with its stub-level fields and never affects sibling jobs.
type PlaceJob struct {
	id     string
	engine *Engine
	venue  *Venue
}

// ID returns the job's registry identifier.
func (j *PlaceJob) ID() string { return j.id }

// Run visits the venue's page, opens and scrolls its reviews, and enriches
// the venue in place. Only navigation exhaustion is terminal; every other
// step degrades and proceeds.
func (j *PlaceJob) Run(ctx context.Context) error {
	e := j.engine
	e.register(ctx, j.id, "place")
	e.setRunning(ctx, j.id)

	err := j.run(ctx)
	e.finish(ctx, j.id, err)
	return err
}

func (j *PlaceJob) run(ctx context.Context) error {
	e := j.engine

	page, cancel, err := e.browser.NewSession(ctx, SessionDetail)
	if err != nil {
		return fmt.Errorf("open detail session: %w", err)
	}
	defer cancel()

	if err := j.navigateWithRetry(ctx, page); err != nil {
		PlaceJobsFailed.Inc()
		return err
	}

	// Reviews are best effort from here on: a failed click or scroll
	// degrades review completeness and order, not the job.
	if err := j.openAndSortReviews(page); err != nil {
		e.logger.Warn("reviews panel unavailable",
			zap.String("job_id", j.id),
			zap.String("venue", j.venue.Name),
			zap.Error(err),
		)
	}
	if err := j.scrollReviews(page); err != nil {
		e.logger.Warn("review scroll incomplete",
			zap.String("job_id", j.id),
			zap.String("venue", j.venue.Name),
			zap.Error(err),
		)
	}

	e.extractor.Details(page, j.venue)
	ReviewsExtracted.Add(float64(len(j.venue.Reviews)))
	e.logger.Info("venue enriched",
		zap.String("job_id", j.id),
		zap.String("venue", j.venue.Name),
		zap.Int("reviews", len(j.venue.Reviews)),
	)
	return nil
}

// navigateWithRetry attempts the place page up to the configured retry
// budget with linear backoff. Exhaustion fails the job with a
// NavigationError isolated to this venue.
func (j *PlaceJob) navigateWithRetry(ctx context.Context, page PageQuery) error {
	e := j.engine
	var lastErr error
	for attempt := 1; attempt <= e.cfg.NavigateRetries; attempt++ {
		lastErr = j.navigateOnce(page)
		if lastErr == nil {
			return nil
		}
		e.logger.Warn("place navigation attempt failed",
			zap.String("job_id", j.id),
			zap.String("venue", j.venue.Name),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == e.cfg.NavigateRetries {
			break
		}
		NavigationRetries.Inc()
		if err := pause(ctx, time.Duration(attempt)*navigateBackoffStep); err != nil {
			lastErr = err
			break
		}
	}
	return &NavigationError{
		Venue:    j.venue.Name,
		Attempts: e.cfg.NavigateRetries,
		Err:      lastErr,
	}
}

func (j *PlaceJob) navigateOnce(page PageQuery) error {
	if err := page.Navigate(j.venue.Link); err != nil {
		return err
	}
	if err := page.WaitVisible(reviewsButtonSelector); err != nil {
		return err
	}
	return page.Sleep(detailSettleDelay)
}

// openAndSortReviews opens the reviews dialog and selects "most recent"
// ordering. A failed sort click leaves the platform's default order in
// place; that degradation is logged per venue rather than silently
// swallowed, since downstream consumers may assume recency order.
func (j *PlaceJob) openAndSortReviews(page PageQuery) error {
	if err := page.Click(reviewsButtonSelector); err != nil {
		return fmt.Errorf("open reviews: %w", err)
	}
	if err := page.Sleep(detailSettleDelay); err != nil {
		return fmt.Errorf("open reviews: %w", err)
	}

	if err := j.sortReviews(page); err != nil {
		j.engine.logger.Warn("review sort failed; keeping platform order",
			zap.String("job_id", j.id),
			zap.String("venue", j.venue.Name),
			zap.Error(err),
		)
	}
	return nil
}

func (j *PlaceJob) sortReviews(page PageQuery) error {
	if err := page.Click(sortButtonSelector); err != nil {
		return fmt.Errorf("open sort menu: %w", err)
	}
	if err := page.Sleep(sortSettleDelay); err != nil {
		return err
	}
	if err := page.Click(sortNewestSelector); err != nil {
		return fmt.Errorf("select most recent: %w", err)
	}
	return page.Sleep(detailSettleDelay)
}

// scrollReviews drives the dialog's internal scroll with the same
// stabilize-or-cap policy as the feed.
func (j *PlaceJob) scrollReviews(page PageQuery) error {
	if err := page.WaitVisible(reviewsDialogSelector); err != nil {
		return fmt.Errorf("reviews dialog not found: %w", err)
	}
	iterations, err := SettleScroll(page, reviewsPanelSelector, j.engine.cfg.ReviewScroll)
	if err != nil {
		return err
	}
	j.engine.logger.Debug("review scroll settled",
		zap.String("job_id", j.id),
		zap.Int("iterations", iterations),
	)
	return nil
}

// pause waits for d without outliving ctx.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
