package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nuha.dev/surtrack/internal/model"
	"nuha.dev/surtrack/internal/presence"
)

type mockSampleStore struct {
	saved   []*model.LocationSample
	saveErr error
	latest  map[string]*model.LocationSample
	history []*model.LocationSample
	calls   int
}

func (m *mockSampleStore) Save(ctx context.Context, s *model.LocationSample) error {
	m.calls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSampleStore) Latest(ctx context.Context, surveyorID string) (*model.LocationSample, error) {
	return m.latest[surveyorID], nil
}

func (m *mockSampleStore) History(ctx context.Context, surveyorID string, start, end *time.Time) ([]*model.LocationSample, error) {
	m.calls++
	if m.history == nil {
		return []*model.LocationSample{}, nil
	}
	return m.history, nil
}

type mockAuth struct {
	ok    bool
	err   error
	calls int
}

func (m *mockAuth) Authenticate(ctx context.Context, username, password string) (bool, error) {
	m.calls++
	return m.ok, m.err
}

type mockPub struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (m *mockPub) Publish(topic string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}

func newLiveFixture(authOK bool) (*LiveService, *mockSampleStore, *mockAuth, *mockPub, *presence.Tracker) {
	samples := &mockSampleStore{latest: map[string]*model.LocationSample{}}
	authn := &mockAuth{ok: authOK}
	pub := &mockPub{}
	pres := presence.NewTracker(300 * time.Second)
	svc := NewLiveService(samples, authn, pub, pres)
	return svc, samples, authn, pub, pres
}

func TestSubmitUnauthorized(t *testing.T) {
	svc, samples, _, pub, pres := newLiveFixture(false)
	msg := &model.LiveLocationMessage{SurveyorID: "SUR1", Latitude: 12.9, Longitude: 77.6}
	err := svc.Submit(context.Background(), msg, "SUR1", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if len(pub.topics) != 0 {
		t.Error("rejected submission must not broadcast")
	}
	if samples.calls != 0 {
		t.Error("rejected submission must not persist")
	}
	if pres.IsOnline("SUR1") {
		t.Error("rejected submission must not record presence")
	}
}

func TestSubmitDefaultsTimestamp(t *testing.T) {
	svc, samples, _, pub, pres := newLiveFixture(true)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	msg := &model.LiveLocationMessage{SurveyorID: "SUR1", Latitude: 12.9, Longitude: 77.6}
	err := svc.Submit(context.Background(), msg, "SUR1", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "location/SUR1" {
		t.Errorf("broadcast topics = %v, want [location/SUR1]", pub.topics)
	}
	var sent model.LiveLocationMessage
	if err := json.Unmarshal(pub.payloads[0], &sent); err != nil {
		t.Fatalf("broadcast payload is not the submission shape: %v", err)
	}
	if sent.SurveyorID != "SUR1" || sent.Latitude != 12.9 || sent.Longitude != 77.6 {
		t.Errorf("broadcast payload = %+v", sent)
	}
	if len(samples.saved) != 1 {
		t.Fatalf("saved %d samples, want 1", len(samples.saved))
	}
	if !samples.saved[0].Timestamp.Equal(now) {
		t.Errorf("persisted timestamp = %v, want ingestion time %v", samples.saved[0].Timestamp, now)
	}
	if !pres.IsOnline("SUR1") {
		t.Error("successful authentication must record presence")
	}
}

func TestSubmitKeepsCallerTimestamp(t *testing.T) {
	svc, samples, _, _, _ := newLiveFixture(true)
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	msg := &model.LiveLocationMessage{SurveyorID: "SUR1", Latitude: 1, Longitude: 2, Timestamp: &ts}
	if err := svc.Submit(context.Background(), msg, "SUR1", "pw"); err != nil {
		t.Fatal(err)
	}
	if !samples.saved[0].Timestamp.Equal(ts) {
		t.Errorf("persisted timestamp = %v, want caller's %v", samples.saved[0].Timestamp, ts)
	}
}

func TestSubmitBroadcastFailureAbortsPersist(t *testing.T) {
	svc, samples, _, pub, pres := newLiveFixture(true)
	pub.err = errors.New("broker down")
	msg := &model.LiveLocationMessage{SurveyorID: "SUR1"}
	err := svc.Submit(context.Background(), msg, "SUR1", "pw")
	if err == nil {
		t.Fatal("broadcast failure must fail the submission")
	}
	if samples.calls != 0 {
		t.Error("broadcast failure must abort the persist step")
	}
	if !pres.IsOnline("SUR1") {
		t.Error("presence update precedes the broadcast and must survive its failure")
	}
}

func TestSubmitPersistFailure(t *testing.T) {
	svc, samples, _, pub, _ := newLiveFixture(true)
	samples.saveErr = errors.New("insert failed")
	msg := &model.LiveLocationMessage{SurveyorID: "SUR1"}
	err := svc.Submit(context.Background(), msg, "SUR1", "pw")
	if err == nil {
		t.Fatal("persist failure must fail the submission")
	}
	// The broadcast already went out; there is no compensation.
	if len(pub.topics) != 1 {
		t.Error("broadcast happens before persist")
	}
}

func TestSubmitAuthenticatorError(t *testing.T) {
	svc, samples, authn, pub, _ := newLiveFixture(false)
	authn.err = errors.New("db gone")
	msg := &model.LiveLocationMessage{SurveyorID: "SUR1"}
	err := svc.Submit(context.Background(), msg, "SUR1", "pw")
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("authenticator failure must surface as internal, got %v", err)
	}
	if len(pub.topics) != 0 || samples.calls != 0 {
		t.Error("authenticator failure must cause no side effects")
	}
}
