package crawler

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// fakePage is a PageQuery whose behavior is set per test through hooks.
// Hooks left nil succeed with zero values, so each test only configures the
// steps it cares about. Sleep never actually sleeps.
type fakePage struct {
	onNavigate    func(url string) error
	onWaitVisible func(selector string) error
	onClick       func(selector string) error
	onEach        func(selector string) ([]PageQuery, error)
	height        int
}

func (p *fakePage) Navigate(url string) error {
	if p.onNavigate != nil {
		return p.onNavigate(url)
	}
	return nil
}

func (p *fakePage) WaitVisible(selector string) error {
	if p.onWaitVisible != nil {
		return p.onWaitVisible(selector)
	}
	return nil
}

func (p *fakePage) Click(selector string) error {
	if p.onClick != nil {
		return p.onClick(selector)
	}
	return nil
}

func (p *fakePage) Each(selector string) ([]PageQuery, error) {
	if p.onEach != nil {
		return p.onEach(selector)
	}
	return nil, nil
}

func (p *fakePage) Text(string) (string, error)              { return "", nil }
func (p *fakePage) Texts(string) ([]string, error)           { return nil, nil }
func (p *fakePage) Attribute(string, string) (string, error) { return "", nil }
func (p *fakePage) Attributes(string, string) ([]string, error) {
	return nil, nil
}
func (p *fakePage) Label(string) (string, error)     { return "", nil }
func (p *fakePage) Labels(string) ([]string, error)  { return nil, nil }
func (p *fakePage) ScrollHeight(string) (int, error) { return p.height, nil }
func (p *fakePage) ScrollToBottom(string) error      { return nil }
func (p *fakePage) Sleep(time.Duration) error        { return nil }

// stubRef stands in for one feed card. The fake extractor reads its fields
// directly instead of running selector strategies.
type stubRef struct {
	fakePage
	name string
	link string
}

// fakeBrowser hands out fakePages and tracks how many detail sessions are
// open at once. The session window brackets a place job's page work, so
// maxDetail observes the effective fan-out.
type fakeBrowser struct {
	mu           sync.Mutex
	searchPage   PageQuery
	newDetail    func() PageQuery
	activeDetail int
	maxDetail    int
	closed       bool
}

func (b *fakeBrowser) NewSession(_ context.Context, kind SessionKind) (PageQuery, context.CancelFunc, error) {
	if kind == SessionSearch {
		return b.searchPage, func() {}, nil
	}

	b.mu.Lock()
	b.activeDetail++
	if b.activeDetail > b.maxDetail {
		b.maxDetail = b.activeDetail
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		b.activeDetail--
		b.mu.Unlock()
	}
	if b.newDetail != nil {
		return b.newDetail(), cancel, nil
	}
	return &fakePage{}, cancel, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type fakeExtractor struct {
	stub    func(node PageQuery) (Venue, error)
	details func(page PageQuery, venue *Venue)
}

func (e *fakeExtractor) Stub(node PageQuery) (Venue, error) {
	if e.stub != nil {
		return e.stub(node)
	}
	ref, ok := node.(*stubRef)
	if !ok {
		return Venue{}, nil
	}
	return Venue{ID: ref.name, Name: ref.name, Link: ref.link}, nil
}

func (e *fakeExtractor) Details(page PageQuery, venue *Venue) {
	if e.details != nil {
		e.details(page, venue)
	}
}

// fakeStore records registry calls, including the full status history per
// job, so tests can assert job outcomes and lifecycle transitions.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]JobRecord
	order   []string
	history map[string][]JobStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]JobRecord),
		history: make(map[string][]JobStatus),
	}
}

func (s *fakeStore) Register(_ context.Context, rec JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	s.history[rec.ID] = append(s.history[rec.ID], rec.Status)
	return nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, jobID string, status JobStatus, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[jobID]
	rec.ID = jobID
	rec.Status = status
	rec.ErrorText = errText
	s.records[jobID] = rec
	s.history[jobID] = append(s.history[jobID], status)
	return nil
}

// statusHistory returns every status the job has passed through, in order.
func (s *fakeStore) statusHistory(jobID string) []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]JobStatus(nil), s.history[jobID]...)
}

func (s *fakeStore) Get(_ context.Context, jobID string) (JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[jobID], nil
}

func (s *fakeStore) List(_ context.Context) ([]JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

// byKind returns the recorded records of one kind, in registration order.
func (s *fakeStore) byKind(kind string) []JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []JobRecord
	for _, id := range s.order {
		if s.records[id].Kind == kind {
			out = append(out, s.records[id])
		}
	}
	return out
}

type fakeSink struct {
	mu    sync.Mutex
	saved []SearchResult
	path  string
	err   error
}

func (s *fakeSink) Save(_ context.Context, result SearchResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, result)
	return s.path, nil
}

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

type fakeIDs struct {
	mu   sync.Mutex
	next int
}

func (g *fakeIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return "job-" + strconv.Itoa(g.next), nil
}

// testConfig returns a config that keeps tests fast: zero scroll intervals
// and a single navigation attempt unless the test overrides it.
func testConfig() Config {
	return Config{
		Query:           "restaurants",
		Latitude:        -33.899109,
		Longitude:       151.209469,
		OutputDir:       "output",
		UserAgent:       "test-agent",
		DetailWorkers:   3,
		SearchTimeout:   time.Minute,
		DetailTimeout:   time.Minute,
		NavigateRetries: 1,
		FeedScroll:      ScrollConfig{NoChangeCount: 1, MaxIterations: 3},
		ReviewScroll:    ScrollConfig{NoChangeCount: 1, MaxIterations: 3},
	}
}

func testEngine(cfg Config, b Browser, ex Extractor, store JobStore, sink Sink) *Engine {
	if store == nil {
		store = newFakeStore()
	}
	if sink == nil {
		sink = &fakeSink{path: "snapshot.json"}
	}
	return NewEngine(
		cfg,
		b,
		ex,
		store,
		sink,
		fakeClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)},
		&fakeIDs{},
		nil,
	)
}
