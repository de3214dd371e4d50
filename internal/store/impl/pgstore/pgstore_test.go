package pgstore

import (
	"nuha.dev/surtrack/internal/store"
)

// Each store type covers exactly one side of the store contract.
var _ store.SampleStore = (*Store)(nil)
var _ store.SurveyorStore = (*SurveyorStore)(nil)
