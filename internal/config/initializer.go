package config

import (
	"go.uber.org/zap"

	"github.com/secintel/kevfeed/internal/kev"
	"github.com/secintel/kevfeed/internal/mongo"
	"github.com/secintel/kevfeed/internal/pipeline"
)

// InitializePipeline wires the configured stages into a pipeline.
func InitializePipeline(c *Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	extractorOpts := []kev.ExtractorOption{
		kev.WithLogger(logger.Named("extractor")),
	}
	if c.Pipeline.Source.Endpoint != "" {
		extractorOpts = append(extractorOpts, kev.WithEndpoint(c.Pipeline.Source.Endpoint))
	}
	if c.Pipeline.Source.TimeoutSeconds > 0 {
		extractorOpts = append(extractorOpts, kev.WithTimeout(c.Pipeline.Source.Timeout()))
	}
	if c.Pipeline.Source.UserAgent != "" {
		extractorOpts = append(extractorOpts, kev.WithUserAgent(c.Pipeline.Source.UserAgent))
	}
	extractor := kev.NewExtractor(extractorOpts...)

	transformer := kev.NewTransformer(
		kev.WithTransformerLogger(logger.Named("transformer")),
	)

	loader := mongo.NewLoader(
		c.Pipeline.Target.URI,
		mongo.WithDatabase(c.Pipeline.Target.Database),
		mongo.WithCollection(c.Pipeline.Target.Collection),
		mongo.WithLogger(logger.Named("loader")),
	)

	return pipeline.New(
		pipeline.WithName(c.Pipeline.Name),
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithExtractor(extractor),
		pipeline.WithTransformer(transformer),
		pipeline.WithLoader(loader),
	)
}
