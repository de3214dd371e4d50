package store

import (
	"context"
	"time"

	"nuha.dev/surtrack/internal/model"
)

// SampleStore is the durable side of the location pipeline. Samples
// are written once and never mutated; the store owns them afterwards.
type SampleStore interface {
	Save(ctx context.Context, s *model.LocationSample) error
	// Latest returns the most recent sample for a surveyor, or nil
	// when none exists.
	Latest(ctx context.Context, surveyorID string) (*model.LocationSample, error)
	// History returns samples ascending by timestamp. Nil bounds are
	// open: both set selects the inclusive range, one set selects
	// after/before, none selects the full history.
	History(ctx context.Context, surveyorID string, start, end *time.Time) ([]*model.LocationSample, error)
}

// SurveyorStore is the profile directory: create/update/lookup only.
type SurveyorStore interface {
	// Filter selects by city and project. Empty strings are
	// wildcards; when both are given the conjunction must match.
	Filter(ctx context.Context, city, project string) ([]*model.Surveyor, error)
	FindByUsername(ctx context.Context, username string) (*model.Surveyor, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, s *model.Surveyor) error
}
