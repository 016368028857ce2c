package crawler

import (
	"context"
	"time"
)

// SessionKind selects the timeout ceiling for a derived browser session.
// Detail sessions get a longer ceiling than search sessions because they
// open a secondary reviews dialog and drive a long internal scroll.
type SessionKind string

// Session kinds handed to Browser.NewSession.
const (
	SessionSearch SessionKind = "search"
	SessionDetail SessionKind = "detail"
)

// PageQuery is the DOM capability the extraction adapter and jobs are written
// against. Production uses a chromedp-backed page; tests use a fixture-backed
// fake. Every method is bounded by the owning session's timeout, so no call
// can block past the session ceiling.
type PageQuery interface {
	// Navigate loads the URL and returns once the document is ready.
	Navigate(url string) error
	// WaitVisible blocks until the first match of selector is visible.
	WaitVisible(selector string) error
	// Click clicks the first match of selector.
	Click(selector string) error
	// Text returns the trimmed text content of the first match, "" if none.
	Text(selector string) (string, error)
	// Texts returns the trimmed text content of every match, skipping empties.
	Texts(selector string) ([]string, error)
	// Attribute returns the named attribute of the first match, "" if none.
	Attribute(selector, name string) (string, error)
	// Attributes returns the named attribute of every match, skipping empties.
	Attributes(selector, name string) ([]string, error)
	// Label returns the accessible label (aria-label) of the first match.
	Label(selector string) (string, error)
	// Labels returns the accessible labels of every match, skipping empties.
	Labels(selector string) ([]string, error)
	// Each returns one node-scoped PageQuery per match of selector.
	Each(selector string) ([]PageQuery, error)
	// ScrollHeight reports the scrollHeight of the first match.
	ScrollHeight(selector string) (int, error)
	// ScrollToBottom scrolls the first match to its bottom.
	ScrollToBottom(selector string) error
	// Sleep pauses without outliving the session.
	Sleep(d time.Duration) error
}

// Browser owns the run's automation allocator and derives bounded sessions
// from it. Sessions derived from a parent context unwind when the run
// deadline fires.
type Browser interface {
	NewSession(ctx context.Context, kind SessionKind) (PageQuery, context.CancelFunc, error)
	Close() error
}

// Extractor is the field-extraction contract applied in both the feed pass
// and the deep pass.
type Extractor interface {
	// Stub builds a venue from one feed node; it errors when the node fails
	// required-field validation.
	Stub(node PageQuery) (Venue, error)
	// Details enriches the venue in place from a loaded place page. Field
	// failures degrade to zero values and never abort the pass.
	Details(page PageQuery, venue *Venue)
}

// JobStore is the registry mapping job IDs to job records. It is the only
// structure touched by multiple jobs concurrently.
type JobStore interface {
	Register(ctx context.Context, rec JobRecord) error
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, errText string) error
	Get(ctx context.Context, jobID string) (JobRecord, error)
	List(ctx context.Context) ([]JobRecord, error)
}

// Sink persists the run-level aggregate as a single artifact and returns its
// path. A sink never produces a partial artifact.
type Sink interface {
	Save(ctx context.Context, result SearchResult) (string, error)
}

// Hasher computes digests for content-derived venue identity.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
