package presence

import (
	"sync"
	"time"

	"github.com/phuslu/log"
)

// Tracker holds the last activity instant per surveyor, in process
// memory only. Entries are created or overwritten by heartbeats and
// successful authentications, never deleted; a restart clears the map.
type Tracker struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	timeout  time.Duration
	now      func() time.Time
	log      log.Logger
}

func NewTracker(timeout time.Duration) *Tracker {
	t := &Tracker{}
	t.lastSeen = make(map[string]time.Time)
	t.timeout = timeout
	t.now = time.Now
	t.log = log.DefaultLogger
	t.log.Context = log.NewContext(nil).Str("module", "presence").Value()
	return t
}

// RecordActivity overwrites the surveyor's last-seen instant with the
// current time. Last writer wins, only the latest instant matters.
func (t *Tracker) RecordActivity(surveyorID string) {
	now := t.now()
	t.mu.Lock()
	t.lastSeen[surveyorID] = now
	t.mu.Unlock()
	t.log.Debug().Str("surveyor_id", surveyorID).Msg("activity recorded")
}

// IsOnline reports whether a last-seen record exists and is no older
// than the tracker timeout.
func (t *Tracker) IsOnline(surveyorID string) bool {
	t.mu.Lock()
	last, ok := t.lastSeen[surveyorID]
	t.mu.Unlock()
	if !ok {
		return false
	}
	return t.now().Sub(last) <= t.timeout
}

// LastSeen returns the recorded instant for the surveyor, if any.
func (t *Tracker) LastSeen(surveyorID string) (time.Time, bool) {
	t.mu.Lock()
	last, ok := t.lastSeen[surveyorID]
	t.mu.Unlock()
	return last, ok
}
