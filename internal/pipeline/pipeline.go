package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secintel/kevfeed/internal/kev"
)

// ErrEmptyBatch means the transform stage produced nothing to load. Under
// full-refresh semantics an empty load is meaningless, so the run fails.
var ErrEmptyBatch = errors.New("transform produced no records")

type Extractor interface {
	Fetch(ctx context.Context) (*kev.Catalog, error)
}

type Transformer interface {
	Transform(ctx context.Context, catalog *kev.Catalog) (kev.Batch, error)
}

type Loader interface {
	Load(ctx context.Context, batch kev.Batch) error
}

type Pipeline struct {
	State *FSM

	name        string
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *zap.Logger

	statsMu sync.RWMutex
	stats   Stats
}

type Option func(*Pipeline)

func WithName(name string) Option {
	return func(p *Pipeline) {
		p.name = name
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithExtractor(extractor Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = extractor
	}
}

func WithTransformer(transformer Transformer) Option {
	return func(p *Pipeline) {
		p.transformer = transformer
	}
}

func WithLoader(loader Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		name:   "kev",
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.extractor == nil || p.transformer == nil || p.loader == nil {
		return nil, fmt.Errorf("pipeline requires an extractor, a transformer and a loader")
	}

	p.State = NewFSM(
		FSMWithLogger(p.logger.Named("fsm")),
	)

	p.logger.Info("Pipeline created",
		zap.String("name", p.name),
		zap.String("state", string(p.State.Current())))
	return p, nil
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) Stats() Stats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}

// Run executes one extract, transform, load cycle. Faults never escape this
// method: any stage error or panic resolves to a failed report.
func (p *Pipeline) Run(ctx context.Context) (report *Report) {
	report = &Report{
		RunID:     uuid.New().String(),
		StartTime: time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panicked", zap.Any("panic", r))
			p.fail(report, string(p.State.Current()), fmt.Errorf("panic: %v", r))
		}
		report.EndTime = time.Now().UTC()
		report.Duration = report.EndTime.Sub(report.StartTime)
		p.recordRun(report)
		observeRun(report)

		if report.Success {
			p.logger.Info("pipeline completed",
				zap.String("run_id", report.RunID),
				zap.Duration("duration", report.Duration),
				zap.Int("records", report.NumRecordsLoaded))
		} else {
			p.logger.Error("pipeline failed",
				zap.String("run_id", report.RunID),
				zap.Duration("duration", report.Duration),
				zap.String("stage", report.FailedStage),
				zap.String("error", report.Error))
		}
	}()

	l := p.logger.With(zap.String("run_id", report.RunID))
	l.Info("pipeline starting", zap.String("name", p.name))

	if err := p.State.Transition(StateExtracting); err != nil {
		p.fail(report, "extract", err)
		return report
	}

	l.Info("phase 1: extraction")
	catalog, err := p.extractor.Fetch(ctx)
	if err != nil {
		p.fail(report, "extract", err)
		return report
	}
	report.CatalogVersion = catalog.CatalogVersion
	report.NumSourceRecords = len(catalog.Vulnerabilities)

	if err := p.State.Transition(StateTransforming); err != nil {
		p.fail(report, "transform", err)
		return report
	}

	l.Info("phase 2: transformation")
	batch, err := p.transformer.Transform(ctx, catalog)
	if err != nil {
		p.fail(report, "transform", err)
		return report
	}
	if len(batch) == 0 {
		p.fail(report, "transform", ErrEmptyBatch)
		return report
	}
	report.NumRecordsProcessed = len(batch)

	if err := p.State.Transition(StateLoading); err != nil {
		p.fail(report, "load", err)
		return report
	}

	l.Info("phase 3: load")
	if err := p.loader.Load(ctx, batch); err != nil {
		p.fail(report, "load", err)
		return report
	}
	report.NumRecordsLoaded = len(batch)

	p.State.Transition(StateSucceeded)
	report.Success = true
	return report
}

func (p *Pipeline) fail(report *Report, stage string, err error) {
	report.Success = false
	report.FailedStage = stage
	if err != nil {
		report.Error = err.Error()
	}
	p.State.Transition(StateFailed)
}

func (p *Pipeline) recordRun(report *Report) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	p.stats.TotalRuns++
	if report.Success {
		p.stats.SucceededRuns++
	} else {
		p.stats.FailedRuns++
	}
	p.stats.LastRunAt = report.EndTime
	p.stats.LastReport = report
}
