package crawler

import (
	"fmt"
	"time"
)

// Scroller is the slice of PageQuery the settle loop needs.
type Scroller interface {
	ScrollHeight(selector string) (int, error)
	ScrollToBottom(selector string) error
	Sleep(d time.Duration) error
}

// SettleScroll drives an incremental scroll of the element matching selector
// until its height stops changing for cfg.NoChangeCount consecutive checks or
// cfg.MaxIterations is reached, whichever comes first. This bounds runtime on
// both short result sets and feeds that never stop growing. It returns the
// number of iterations performed.
func SettleScroll(page Scroller, selector string, cfg ScrollConfig) (int, error) {
	last := -1
	noChange := 0
	for i := 1; i <= cfg.MaxIterations; i++ {
		if err := page.ScrollToBottom(selector); err != nil {
			return i, fmt.Errorf("scroll %s: %w", selector, err)
		}
		if err := page.Sleep(cfg.Interval); err != nil {
			return i, fmt.Errorf("scroll pause: %w", err)
		}
		height, err := page.ScrollHeight(selector)
		if err != nil {
			return i, fmt.Errorf("measure %s: %w", selector, err)
		}
		if height == last {
			noChange++
		} else {
			noChange = 0
			last = height
		}
		if noChange >= cfg.NoChangeCount {
			return i, nil
		}
	}
	return cfg.MaxIterations, nil
}
