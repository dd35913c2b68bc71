// models/checkin.go
package models

import (
	"time"
)

// CheckInWindow is the admin-defined period during which a token may be used.
type CheckInWindow struct {
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
}

// WindowState is derived from (now, OpensAt, ClosesAt) and never stored.
type WindowState string

const (
	WindowNotOpen WindowState = "not_open"
	WindowActive  WindowState = "active"
	WindowClosed  WindowState = "closed"
)

// IssuedToken is what the remote issuer hands back on success.
type IssuedToken struct {
	Token  string        `json:"token"`
	Window CheckInWindow `json:"window"`
}

// CachedCheckInToken is the last token successfully issued for one event.
type CachedCheckInToken struct {
	EventID        string    `json:"event_id"`
	Token          string    `json:"token"`
	WindowOpensAt  time.Time `json:"window_opens_at"`
	WindowClosesAt time.Time `json:"window_closes_at"`
	CachedAt       time.Time `json:"cached_at"`
}

// UsableAt reports whether the entry may still be served. Staleness depends
// only on the window close, never on CachedAt.
func (c CachedCheckInToken) UsableAt(now time.Time) bool {
	return !now.After(c.WindowClosesAt)
}

func (c CachedCheckInToken) Window() CheckInWindow {
	return CheckInWindow{OpensAt: c.WindowOpensAt, ClosesAt: c.WindowClosesAt}
}

// PendingScan is the single scanned-but-unsubmitted token slot.
type PendingScan struct {
	Token            string    `json:"token"`
	EventDisplayName string    `json:"event_display_name"`
	ScannedAt        time.Time `json:"scanned_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the scan is past its TTL at now.
func (p PendingScan) ExpiredAt(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Location is an optional attendee position sent with a check-in submission.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Attendance is the server record created by a successful check-in.
type Attendance struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// EventSummary is the subset of event data returned alongside an attendance.
type EventSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	CheckInOpensAt *time.Time `json:"checkin_opens_at,omitempty"`
}

// CheckInResult is the validator's successful answer.
type CheckInResult struct {
	Attendance Attendance   `json:"attendance"`
	Event      EventSummary `json:"event"`
}
