package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status enumerates lifecycle states for issues. Values are part of the wire format.
type Status int

const (
	StatusOpen       Status = 1
	StatusInProgress Status = 2
	StatusResolved   Status = 3
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusOpen && s <= StatusResolved
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "InProgress"
	case StatusResolved:
		return "Resolved"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Label is the human-readable form used by clients.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// ParseStatus accepts either the numeric value or the name of a status.
func ParseStatus(raw string) (Status, error) {
	val := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(val); err == nil {
		s := Status(n)
		if !s.Valid() {
			return 0, fmt.Errorf("unknown status %d", n)
		}
		return s, nil
	}
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(val)) {
	case "open":
		return StatusOpen, nil
	case "inprogress":
		return StatusInProgress, nil
	case "resolved":
		return StatusResolved, nil
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

// Issue is the single tracked entity.
type Issue struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// IsResolved reports whether the issue is in the Resolved state.
func (i Issue) IsResolved() bool {
	return i.Status == StatusResolved
}

// ApplyStatus moves issue to status and keeps ResolvedAt present iff the
// status is Resolved. An already set ResolvedAt survives a repeated resolve.
func ApplyStatus(issue Issue, status Status, now time.Time) Issue {
	issue.Status = status
	switch {
	case status == StatusResolved && issue.ResolvedAt == nil:
		ts := Timestamp(now)
		issue.ResolvedAt = &ts
	case status != StatusResolved:
		issue.ResolvedAt = nil
	}
	return issue
}

// Timestamp normalizes t to the precision and zone the store persists.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
