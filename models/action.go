// models/action.go
package models

import (
	"time"
)

// ActionKind is the closed set of UI/domain actions that can trigger reward evaluation.
type ActionKind string

const (
	ActionCheckedIn         ActionKind = "checked_in"
	ActionEarlyCheckIn      ActionKind = "early_checkin"
	ActionRSVP              ActionKind = "rsvp"
	ActionPhotoUploaded     ActionKind = "photo_uploaded"
	ActionFeedbackSubmitted ActionKind = "feedback_submitted"
	ActionProfileUpdated    ActionKind = "profile_updated"
	ActionProfileCompleted  ActionKind = "profile_completed"
)

// AllActionKinds lists every known kind in a stable order.
var AllActionKinds = []ActionKind{
	ActionCheckedIn,
	ActionEarlyCheckIn,
	ActionRSVP,
	ActionPhotoUploaded,
	ActionFeedbackSubmitted,
	ActionProfileUpdated,
	ActionProfileCompleted,
}

// Valid reports whether k is one of the known kinds.
func (k ActionKind) Valid() bool {
	for _, known := range AllActionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ActionPayload is the typed, per-kind body of an action event.
// Metadata flattens it into the bag forwarded to the rule engine.
type ActionPayload interface {
	Kind() ActionKind
	Metadata() map[string]any
}

// ActionEvent is created at emit time and handed to subscribers by value.
type ActionEvent struct {
	ID         string        `json:"id"`
	Kind       ActionKind    `json:"kind"`
	ActorID    string        `json:"actor_id"`
	Payload    ActionPayload `json:"payload,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Metadata returns the payload metadata, or an empty map when there is no payload.
func (e ActionEvent) Metadata() map[string]any {
	if e.Payload == nil {
		return map[string]any{}
	}
	md := e.Payload.Metadata()
	if md == nil {
		return map[string]any{}
	}
	return md
}

// CheckInPayload accompanies checked_in and early_checkin.
type CheckInPayload struct {
	EventID      string
	AttendanceID string
	Early        bool
}

func (p CheckInPayload) Kind() ActionKind {
	if p.Early {
		return ActionEarlyCheckIn
	}
	return ActionCheckedIn
}

func (p CheckInPayload) Metadata() map[string]any {
	md := map[string]any{"event_id": p.EventID}
	if p.AttendanceID != "" {
		md["attendance_id"] = p.AttendanceID
	}
	return md
}

// RSVPStatus is the attendee's answer to an event invitation.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPNotGoing RSVPStatus = "not_going"
)

type RSVPPayload struct {
	EventID string
	Status  RSVPStatus
}

func (RSVPPayload) Kind() ActionKind { return ActionRSVP }

func (p RSVPPayload) Metadata() map[string]any {
	return map[string]any{"event_id": p.EventID, "status": string(p.Status)}
}

type PhotoUploadedPayload struct {
	EventID string
	PhotoID string
}

func (PhotoUploadedPayload) Kind() ActionKind { return ActionPhotoUploaded }

func (p PhotoUploadedPayload) Metadata() map[string]any {
	return map[string]any{"event_id": p.EventID, "photo_id": p.PhotoID}
}

type FeedbackPayload struct {
	EventID string
	Rating  int
}

func (FeedbackPayload) Kind() ActionKind { return ActionFeedbackSubmitted }

func (p FeedbackPayload) Metadata() map[string]any {
	return map[string]any{"event_id": p.EventID, "rating": p.Rating}
}

// ProfilePayload accompanies profile_updated and profile_completed.
type ProfilePayload struct {
	Fields    []string
	Completed bool
}

func (p ProfilePayload) Kind() ActionKind {
	if p.Completed {
		return ActionProfileCompleted
	}
	return ActionProfileUpdated
}

func (p ProfilePayload) Metadata() map[string]any {
	fields := make([]string, len(p.Fields))
	copy(fields, p.Fields)
	return map[string]any{"fields": fields}
}
