package tracking

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"nuha.dev/surtrack/internal/model"
	"nuha.dev/surtrack/internal/store"
)

// HistoryService answers time-windowed track queries, ascending by
// timestamp. An empty result is not an error; the boundary decides
// between 200 and 204.
type HistoryService struct {
	samples store.SampleStore
	log     log.Logger
}

func NewHistoryService(samples store.SampleStore) *HistoryService {
	h := &HistoryService{}
	h.samples = samples
	h.log = log.DefaultLogger
	h.log.Context = log.NewContext(nil).Str("module", "history").Value()
	return h
}

// Track selects one of four retrieval modes from the bound
// combination: inclusive range, after, before, or full history.
func (h *HistoryService) Track(ctx context.Context, surveyorID string, start, end *time.Time) ([]*model.LocationSample, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidRange
	}
	return h.samples.History(ctx, surveyorID, start, end)
}

// Latest returns the most recent sample, or nil when the surveyor has
// none.
func (h *HistoryService) Latest(ctx context.Context, surveyorID string) (*model.LocationSample, error) {
	return h.samples.Latest(ctx, surveyorID)
}
