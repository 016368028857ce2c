package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func placeEngine(cfg Config, page *fakePage, ex Extractor, store JobStore) *Engine {
	browser := &fakeBrowser{
		newDetail: func() PageQuery { return page },
	}
	return testEngine(cfg, browser, ex, store, nil)
}

func TestPlaceJobRecoversFromTransientNavigationFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	page := &fakePage{
		height: 400,
		onNavigate: func(string) error {
			attempts++
			if attempts < 2 {
				return errors.New("net::ERR_TIMED_OUT")
			}
			return nil
		},
	}
	extractor := &fakeExtractor{
		details: func(_ PageQuery, venue *Venue) {
			venue.Website = "enriched"
		},
	}
	cfg := testConfig()
	cfg.NavigateRetries = 3
	engine := placeEngine(cfg, page, extractor, nil)

	venue := Venue{Name: "Cafe One", Link: "https://maps.example/place/cafe-one"}
	job, err := engine.newPlaceJob(&venue)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, 2, attempts)
	require.Equal(t, "enriched", venue.Website)
}

func TestPlaceJobFailsAfterRetryExhaustion(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		onNavigate: func(string) error {
			return errors.New("net::ERR_CONNECTION_RESET")
		},
	}
	store := newFakeStore()
	engine := placeEngine(testConfig(), page, &fakeExtractor{}, store)

	venue := Venue{Name: "Cafe Two", Link: "https://maps.example/place/cafe-two"}
	job, err := engine.newPlaceJob(&venue)
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	require.Equal(t, "Cafe Two", navErr.Venue)
	require.Equal(t, 1, navErr.Attempts)
	require.False(t, IsFatal(err))

	// The venue keeps its stub fields untouched.
	require.Empty(t, venue.Website)

	records := store.byKind("place")
	require.Len(t, records, 1)
	require.Equal(t, JobStatusFailed, records[0].Status)
}

func TestPlaceJobProceedsWhenReviewsPanelUnavailable(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		height: 400,
		onClick: func(selector string) error {
			if selector == reviewsButtonSelector {
				return errors.New("node not clickable")
			}
			return nil
		},
	}
	extractor := &fakeExtractor{
		details: func(_ PageQuery, venue *Venue) {
			venue.Website = "enriched"
		},
	}
	engine := placeEngine(testConfig(), page, extractor, nil)

	venue := Venue{Name: "Cafe Three", Link: "https://maps.example/place/cafe-three"}
	job, err := engine.newPlaceJob(&venue)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, "enriched", venue.Website)
}

func TestPlaceJobProceedsWhenSortFails(t *testing.T) {
	t.Parallel()

	var clicks []string
	page := &fakePage{
		height: 400,
		onClick: func(selector string) error {
			clicks = append(clicks, selector)
			if selector == sortButtonSelector {
				return errors.New("sort menu missing")
			}
			return nil
		},
	}
	extractor := &fakeExtractor{
		details: func(_ PageQuery, venue *Venue) {
			venue.Website = "enriched"
		},
	}
	engine := placeEngine(testConfig(), page, extractor, nil)

	venue := Venue{Name: "Cafe Four", Link: "https://maps.example/place/cafe-four"}
	job, err := engine.newPlaceJob(&venue)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, "enriched", venue.Website)

	// The dialog was opened and the sort attempted, but the default order
	// was kept after the failed menu click.
	require.Contains(t, clicks, reviewsButtonSelector)
	require.Contains(t, clicks, sortButtonSelector)
	require.NotContains(t, clicks, sortNewestSelector)
}

func TestNavigationErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("net::ERR_TIMED_OUT")
	err := &NavigationError{Venue: "Cafe Five", Attempts: 3, Err: cause}
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "Cafe Five")
	require.Contains(t, err.Error(), "3 attempts")
}
