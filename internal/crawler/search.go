package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Selectors for the search feed. The feed is the scrollable list of result
// cards; stubs are the place anchors inside it.
const (
	feedSelector = `div[role="feed"]`
	stubSelector = `div[role="feed"] a[href*="maps/place"]`
)

// feedSettleDelay lets the feed finish its initial render before the scroll
// loop starts measuring heights.
const feedSettleDelay = 2 * time.Second

// SearchJob resolves a query and coordinate into a list of venue stubs and
// dispatches one PlaceJob per stub under the detail-worker permit pool. The
// job is done only after every dispatched PlaceJob has returned.
type SearchJob struct {
	id     string
	engine *Engine
	state  SearchState
	venues []Venue
}

// ID returns the job's registry identifier.
func (j *SearchJob) ID() string { return j.id }

// State returns the job's last reached pipeline state.
func (j *SearchJob) State() SearchState { return j.state }

// Run drives the search pipeline to completion and returns the venue list,
// enriched in place by the dispatched place jobs.
func (j *SearchJob) Run(ctx context.Context) ([]Venue, error) {
	e := j.engine
	e.register(ctx, j.id, "search")
	e.setRunning(ctx, j.id)

	err := j.run(ctx)
	if err != nil {
		j.state = SearchStateFailed
	}
	e.finish(ctx, j.id, err)
	if err != nil {
		return nil, err
	}
	return j.venues, nil
}

func (j *SearchJob) run(ctx context.Context) error {
	e := j.engine

	page, cancel, err := e.browser.NewSession(ctx, SessionSearch)
	if err != nil {
		return fmt.Errorf("open search session: %w", err)
	}
	defer cancel()

	url := searchURL(e.cfg.Query, e.cfg.Latitude, e.cfg.Longitude)
	e.logger.Info("starting search", zap.String("job_id", j.id), zap.String("url", url))

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate search page: %w", err)
	}
	j.state = SearchStateNavigated

	if err := page.WaitVisible(feedSelector); err != nil {
		return fmt.Errorf("%w: results feed not visible: %v", ErrPageLoadTimeout, err)
	}
	j.state = SearchStateFeedVisible

	if err := page.Sleep(feedSettleDelay); err != nil {
		return fmt.Errorf("feed settle: %w", err)
	}
	iterations, err := SettleScroll(page, feedSelector, e.cfg.FeedScroll)
	if err != nil {
		return fmt.Errorf("scroll feed: %w", err)
	}
	j.state = SearchStateScrollSettled
	e.logger.Debug("feed scroll settled", zap.String("job_id", j.id), zap.Int("iterations", iterations))

	if err := j.extractStubs(page); err != nil {
		return err
	}
	j.state = SearchStateStubsExtracted
	e.logger.Info("stubs extracted", zap.String("job_id", j.id), zap.Int("venues", len(j.venues)))

	j.dispatch(ctx)
	j.state = SearchStateDone
	return nil
}

// extractStubs enumerates the feed's place anchors and runs the extraction
// adapter per node. Nodes failing required-field validation are dropped and
// logged; partial extraction is the expected common case and never fails the
// job.
func (j *SearchJob) extractStubs(page PageQuery) error {
	e := j.engine
	nodes, err := page.Each(stubSelector)
	if err != nil {
		return fmt.Errorf("enumerate feed nodes: %w", err)
	}

	venues := make([]Venue, 0, len(nodes))
	for _, node := range nodes {
		venue, err := e.extractor.Stub(node)
		if err != nil {
			VenuesRejected.Inc()
			e.logger.Debug("feed node dropped", zap.String("job_id", j.id), zap.Error(err))
			continue
		}
		VenuesExtracted.Inc()
		venues = append(venues, venue)
	}
	j.venues = venues
	return nil
}

// dispatch fans out one PlaceJob per stub under the permit pool and blocks
// until every job has returned, so the sink never observes a partially
// enriched result set. Each PlaceJob gets exclusive write access to its slot
// in the venue slice; a terminal failure is attributed to that venue only.
func (j *SearchJob) dispatch(ctx context.Context) {
	e := j.engine
	sem := make(chan struct{}, e.cfg.DetailWorkers)
	var wg sync.WaitGroup

	for i := range j.venues {
		if j.venues[i].Link == "" {
			continue
		}
		wg.Add(1)
		go func(venue *Venue) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			place, err := e.newPlaceJob(venue)
			if err != nil {
				e.logger.Error("create place job failed", zap.String("venue", venue.Name), zap.Error(err))
				return
			}
			if err := place.Run(ctx); err != nil {
				e.logger.Error("place job failed",
					zap.String("job_id", place.ID()),
					zap.String("venue", venue.Name),
					zap.Error(err),
				)
			}
		}(&j.venues[i])
	}
	j.state = SearchStateDispatched
	wg.Wait()
}

// searchURL composes the map search URL for a query centered on a
// coordinate.
func searchURL(query string, lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/%s/@%f,%f,15z",
		strings.ReplaceAll(query, " ", "+"), lat, lng)
}

// IsFatal reports whether the error should fail the whole process rather
// than a single venue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrBrowserStart) ||
		errors.Is(err, ErrPageLoadTimeout) ||
		errors.Is(err, ErrSerialization)
}
