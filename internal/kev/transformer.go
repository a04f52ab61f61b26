package kev

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Transformer struct {
	enhancer *Enhancer
	logger   *zap.Logger
	now      func() time.Time
}

type TransformerOption func(*Transformer)

func WithTransformerLogger(logger *zap.Logger) TransformerOption {
	return func(t *Transformer) {
		t.logger = logger
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) TransformerOption {
	return func(t *Transformer) {
		t.now = now
	}
}

func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.enhancer = NewEnhancer(t.logger.Named("enhancer"))
	return t
}

// Transform enhances every record of the catalog in source order. A record
// that fails enhancement is dropped and logged; the loop always continues.
// An empty or absent catalog yields an empty batch, not an error.
func (t *Transformer) Transform(ctx context.Context, catalog *Catalog) (Batch, error) {
	if catalog == nil || len(catalog.Vulnerabilities) == 0 {
		t.logger.Warn("no vulnerability records to transform")
		return Batch{}, nil
	}

	meta := Metadata{
		SourceCatalogVersion: catalog.CatalogVersion,
		CatalogReleaseDate:   catalog.DateReleased,
		TotalVulnerabilities: catalog.Count,
		DataExtractionTime:   t.now().UTC(),
	}

	t.logger.Info("transforming vulnerability records",
		zap.Int("records", len(catalog.Vulnerabilities)),
		zap.String("catalog_version", catalog.CatalogVersion))

	batch := make(Batch, 0, len(catalog.Vulnerabilities))
	for i, raw := range catalog.Vulnerabilities {
		enhanced, err := t.enhancer.Enhance(raw, meta, i, t.now().UTC())
		if err != nil {
			t.logger.Warn("dropping record",
				zap.Int("position", i),
				zap.Error(err))
			continue
		}
		batch = append(batch, enhanced)
	}

	t.logger.Info("transform complete",
		zap.Int("processed", len(batch)),
		zap.Int("dropped", len(catalog.Vulnerabilities)-len(batch)))

	return batch, nil
}
