package kev

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DateFields are the catalog fields that get a parallel parsed-date field
// when their value parses as a calendar date.
var DateFields = []string{"dateAdded", "dueDate"}

const dateLayout = "2006-01-02"

var ErrEmptyRecord = errors.New("empty record")

type Enhancer struct {
	logger *zap.Logger
}

func NewEnhancer(logger *zap.Logger) *Enhancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{logger: logger}
}

// Enhance returns a copy of raw with processing metadata attached. raw and
// meta are never modified. A failed date parse drops only the derived field;
// a date field holding a non-string value fails the whole record.
func (e *Enhancer) Enhance(raw RawRecord, meta Metadata, position int, now time.Time) (EnhancedRecord, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyRecord
	}

	enhanced := make(EnhancedRecord, len(raw)+len(DateFields)+5)
	for k, v := range raw {
		enhanced[k] = v
	}

	enhanced["record_processed_at"] = now
	enhanced["processing_date"] = now.Format(dateLayout)
	enhanced["record_position"] = position
	enhanced["source_system"] = SourceSystem
	enhanced["catalog_information"] = meta

	for _, field := range DateFields {
		value, ok := raw[field]
		if !ok || value == nil || value == "" {
			continue
		}

		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s is not a string: %T", field, value)
		}

		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			e.logger.Debug("could not parse date field",
				zap.String("field", field),
				zap.String("value", s),
				zap.Error(err))
			continue
		}

		enhanced[field+"_datetime"] = parsed
	}

	return enhanced, nil
}
