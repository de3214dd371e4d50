package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"nuha.dev/surtrack/internal/auth"
	"nuha.dev/surtrack/internal/model"
	"nuha.dev/surtrack/internal/presence"
	"nuha.dev/surtrack/internal/store"
	"nuha.dev/surtrack/internal/transport"
)

// LiveService runs the live-location pipeline: authenticate, broadcast
// to the surveyor's topic, persist. The broadcast deliberately happens
// before the durability write; a persist failure after a successful
// broadcast returns an error and is not compensated.
type LiveService struct {
	samples  store.SampleStore
	auth     auth.Authenticator
	pub      transport.Publisher
	presence *presence.Tracker
	now      func() time.Time
	log      log.Logger
}

func NewLiveService(samples store.SampleStore, authn auth.Authenticator, pub transport.Publisher, pres *presence.Tracker) *LiveService {
	s := &LiveService{}
	s.samples = samples
	s.auth = authn
	s.pub = pub
	s.presence = pres
	s.now = time.Now
	s.log = log.DefaultLogger
	s.log.Context = log.NewContext(nil).Str("module", "live").Value()
	return s
}

// Submit ingests one live sample. A failed authentication causes no
// side effects at all; a successful one records presence activity for
// the surveyor regardless of how the rest of the pipeline ends.
func (s *LiveService) Submit(ctx context.Context, msg *model.LiveLocationMessage, username, password string) error {
	ok, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		s.log.Debug().Str("username", username).Msg("submission rejected")
		return ErrUnauthorized
	}
	s.presence.RecordActivity(msg.SurveyorID)

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	err = s.pub.Publish(model.Topic(msg.SurveyorID), payload)
	if err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}

	ts := s.now().UTC()
	if msg.Timestamp != nil {
		ts = *msg.Timestamp
	}
	sample := &model.LocationSample{
		SurveyorID: msg.SurveyorID,
		Latitude:   msg.Latitude,
		Longitude:  msg.Longitude,
		Timestamp:  ts,
		Geom:       &model.Point{Longitude: msg.Longitude, Latitude: msg.Latitude},
	}
	err = s.samples.Save(ctx, sample)
	if err != nil {
		// Subscribers already saw this sample; it is now missing from
		// history. Flagged ordering, kept as observed.
		s.log.Error().Err(err).Str("surveyor_id", msg.SurveyorID).Msg("persist failed after broadcast")
		return fmt.Errorf("persist: %w", err)
	}
	s.log.Debug().Str("surveyor_id", msg.SurveyorID).Msg("sample ingested")
	return nil
}
