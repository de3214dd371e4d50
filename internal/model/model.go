package model

import (
	"strings"
	"time"
)

// Surveyor ids live in a reserved namespace. Anything outside it, or
// anything that looks like an admin account, is invisible to tracking.
const (
	SurveyorIDPrefix = "SUR"
	adminSubstring   = "admin"
)

// Point is the geometry projection of a sample, (longitude, latitude)
// in SRID 4326.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// LocationSample is one stored position reading. Immutable once
// written, owned by the store afterwards.
type LocationSample struct {
	SurveyorID string    `json:"surveyorId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
	Geom       *Point    `json:"geometry,omitempty"`
}

// LiveLocationMessage is the wire shape of a live submission. The
// timestamp is optional, the server fills the ingestion time in when
// it is absent. The broadcast payload is this exact shape.
type LiveLocationMessage struct {
	SurveyorID string     `json:"surveyorId" validate:"required"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// Surveyor is a directory profile. Online is request-scoped, computed
// from the presence tracker per response and never persisted.
type Surveyor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	ProjectName string `json:"projectName"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	Online      bool   `json:"online"`
}

// Valid reports whether the surveyor belongs to the tracked namespace:
// non-empty id with the SUR prefix, and no admin substring in id or
// username. The admin check is a plain case-insensitive substring
// denylist, not a role lookup.
func (s *Surveyor) Valid() bool {
	if s == nil || s.ID == "" {
		return false
	}
	if !strings.HasPrefix(s.ID, SurveyorIDPrefix) {
		return false
	}
	if strings.Contains(strings.ToLower(s.ID), adminSubstring) {
		return false
	}
	if strings.Contains(strings.ToLower(s.Username), adminSubstring) {
		return false
	}
	return true
}

// Topic returns the broadcast address for one surveyor's live samples.
func Topic(surveyorID string) string {
	return "location/" + surveyorID
}
