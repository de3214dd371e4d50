package tracking

import (
	"context"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/crypto/bcrypt"

	"nuha.dev/surtrack/internal/model"
	"nuha.dev/surtrack/internal/presence"
	"nuha.dev/surtrack/internal/store"
	"nuha.dev/surtrack/internal/util"
)

const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
)

type DirectoryConfig struct {
	// RecentSampleWindow bounds the age of the latest stored sample
	// for it to count as an activity signal; a sample aged exactly
	// the window is already stale. Independent from the presence
	// tracker timeout even though the defaults coincide.
	RecentSampleWindow time.Duration
}

// DirectoryService filters surveyor profiles and aggregates their
// derived status. Profiles outside the tracked namespace are dropped
// silently everywhere.
type DirectoryService struct {
	surveyors store.SurveyorStore
	samples   store.SampleStore
	presence  *presence.Tracker
	config    *DirectoryConfig
	now       func() time.Time
	log       log.Logger
}

func NewDirectoryService(surveyors store.SurveyorStore, samples store.SampleStore, pres *presence.Tracker, config *DirectoryConfig) *DirectoryService {
	d := &DirectoryService{}
	d.surveyors = surveyors
	d.samples = samples
	d.presence = pres
	d.config = config
	d.now = time.Now
	d.log = log.DefaultLogger
	d.log.Context = log.NewContext(nil).Str("module", "directory").Value()
	return d
}

// Filter selects profiles by the optional city/project predicates. The
// status parameter is accepted for compatibility but not applied.
func (d *DirectoryService) Filter(ctx context.Context, city, project, status string) ([]*model.Surveyor, error) {
	_ = status
	list, err := d.surveyors.Filter(ctx, city, project)
	if err != nil {
		return nil, err
	}
	return validOnly(list), nil
}

// Statuses derives Online/Offline for every valid surveyor. A surveyor
// is online when either activity signal holds: a stored sample within
// the recency window, or a fresh heartbeat in the presence tracker.
func (d *DirectoryService) Statuses(ctx context.Context) (map[string]string, error) {
	list, err := d.surveyors.Filter(ctx, "", "")
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]string)
	for _, s := range validOnly(list) {
		statuses[s.ID] = d.deriveStatus(ctx, s.ID)
	}
	return statuses, nil
}

func (d *DirectoryService) deriveStatus(ctx context.Context, surveyorID string) string {
	if d.presence.IsOnline(surveyorID) {
		return StatusOnline
	}
	last, err := d.samples.Latest(ctx, surveyorID)
	if err != nil {
		d.log.Error().Err(err).Str("surveyor_id", surveyorID).Msg("latest sample lookup failed")
		return StatusOffline
	}
	if last != nil && d.now().Sub(last.Timestamp) < d.config.RecentSampleWindow {
		return StatusOnline
	}
	return StatusOffline
}

// All returns every profile with the request-scoped Online flag filled
// from the presence tracker.
func (d *DirectoryService) All(ctx context.Context) ([]*model.Surveyor, error) {
	list, err := d.surveyors.Filter(ctx, "", "")
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		s.Online = d.presence.IsOnline(s.ID)
	}
	return list, nil
}

// Save creates or updates a profile. An incoming plaintext password is
// hashed before it reaches the directory store.
func (d *DirectoryService) Save(ctx context.Context, s *model.Surveyor) error {
	if s.Password != "" {
		s.Password = util.CryptPwd(s.Password)
	}
	return d.surveyors.Save(ctx, s)
}

// Login authenticates a surveyor by username and records a heartbeat
// on success.
func (d *DirectoryService) Login(ctx context.Context, username, password string) (*model.Surveyor, error) {
	s, err := d.surveyors.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUnknownSurveyor
	}
	err = bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password))
	if err != nil {
		return nil, ErrUnauthorized
	}
	d.presence.RecordActivity(s.ID)
	s.Password = ""
	s.Online = true
	return s, nil
}

func (d *DirectoryService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := d.surveyors.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Heartbeat is the explicit activity signal.
func (d *DirectoryService) Heartbeat(surveyorID string) {
	d.presence.RecordActivity(surveyorID)
}

func (d *DirectoryService) IsOnline(surveyorID string) bool {
	return d.presence.IsOnline(surveyorID)
}

func validOnly(list []*model.Surveyor) []*model.Surveyor {
	out := make([]*model.Surveyor, 0, len(list))
	for _, s := range list {
		if s.Valid() {
			out = append(out, s)
		}
	}
	return out
}
