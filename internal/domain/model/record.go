// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// DayFormat is the calendar-date layout identifying a game day.
const DayFormat = "2006-01-02"

// PlayRecord represents one participant's daily game outcome.
// Identity is the (normalized username, date) pair and never changes
// after creation; Prize and Timestamp are immutable as well.
type PlayRecord struct {
	ID          string    // row id assigned at creation
	Username    string    // original casing preserved for display
	Agent       string    // free-text classification code, not identity
	Prize       int       // reward amount, assigned once
	Date        string    // game day, DayFormat in local time
	Timestamp   time.Time // creation instant, drives cache expiry
	IsScratched bool      // flips false->true exactly once at reveal
	IsClaimed   bool      // admin-owned flag, independent of eligibility
	IP          string    // best-effort origin, anti-abuse signal only
}

// NormalizeUsername trims and lowercases a username for comparison.
// Stored records keep the original casing.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches reports whether the record belongs to the given user and day.
// Username comparison is case-insensitive and trimmed.
func (r PlayRecord) Matches(username, date string) bool {
	return NormalizeUsername(r.Username) == NormalizeUsername(username) && r.Date == date
}

// Day formats an instant as a game day in local time.
func Day(t time.Time) string {
	return t.Local().Format(DayFormat)
}
