package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Engine wires the crawl pipeline together: it runs one search job per
// invocation, waits for every dispatched place job, and hands the aggregate
// to the sink.
type Engine struct {
	cfg       Config
	browser   Browser
	extractor Extractor
	store     JobStore
	sink      Sink
	clock     Clock
	ids       IDGenerator
	logger    *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(
	cfg Config,
	browser Browser,
	extractor Extractor,
	store JobStore,
	sink Sink,
	clock Clock,
	ids IDGenerator,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		browser:   browser,
		extractor: extractor,
		store:     store,
		sink:      sink,
		clock:     clock,
		ids:       ids,
		logger:    logger,
	}
}

// Run executes the full pipeline and returns the snapshot path. Per-venue
// failures are reflected as partial records in the output; only browser
// start, feed load, and serialization failures surface here.
func (e *Engine) Run(ctx context.Context) (string, error) {
	defer e.logCounters()

	search, err := e.newSearchJob()
	if err != nil {
		return "", fmt.Errorf("create search job: %w", err)
	}

	venues, err := search.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", e.cfg.Query, err)
	}

	result := SearchResult{
		Query: e.cfg.Query,
		Location: Location{
			Lat: e.cfg.Latitude,
			Lng: e.cfg.Longitude,
		},
		CreatedAt: e.clock.Now(),
		Places:    venues,
	}

	path, err := e.sink.Save(ctx, result)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	e.logger.Info("crawl finished",
		zap.String("query", e.cfg.Query),
		zap.Int("venues", len(venues)),
		zap.String("snapshot", path),
	)
	return path, nil
}

func (e *Engine) newSearchJob() (*SearchJob, error) {
	id, err := e.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	return &SearchJob{
		id:     id,
		engine: e,
		state:  SearchStateCreated,
	}, nil
}

func (e *Engine) newPlaceJob(venue *Venue) (*PlaceJob, error) {
	id, err := e.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	return &PlaceJob{
		id:     id,
		engine: e,
		venue:  venue,
	}, nil
}

// logCounters reports the run's pipeline counters on every exit path. The
// process is one-shot, so a final summary is the delivery channel for the
// registry's counters.
func (e *Engine) logCounters() {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		e.logger.Warn("gather metrics failed", zap.Error(err))
		return
	}
	fields := make([]zap.Field, 0, len(families))
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "crawler_") {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		fields = append(fields, zap.Float64(mf.GetName(), total))
	}
	e.logger.Info("run counters", fields...)
}

// register adds the job to the registry; registry failures are logged, not
// fatal, since the registry is observability only.
func (e *Engine) register(ctx context.Context, id, kind string) {
	rec := JobRecord{
		ID:      id,
		Kind:    kind,
		Status:  JobStatusCreated,
		Created: e.clock.Now(),
	}
	if err := e.store.Register(ctx, rec); err != nil {
		e.logger.Warn("job registration failed", zap.String("job_id", id), zap.Error(err))
	}
}

// setRunning marks the job as started in the registry.
func (e *Engine) setRunning(ctx context.Context, id string) {
	if err := e.store.UpdateStatus(ctx, id, JobStatusRunning, ""); err != nil {
		e.logger.Warn("job status update failed", zap.String("job_id", id), zap.Error(err))
	}
}

func (e *Engine) finish(ctx context.Context, id string, jobErr error) {
	status := JobStatusSucceeded
	errText := ""
	if jobErr != nil {
		status = JobStatusFailed
		errText = jobErr.Error()
	}
	if err := e.store.UpdateStatus(ctx, id, status, errText); err != nil {
		e.logger.Warn("job status update failed", zap.String("job_id", id), zap.Error(err))
	}
}
