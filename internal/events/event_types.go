package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue.created"
	EventIssueUpdated       EventType = "issue.updated"
	EventIssueStatusChanged EventType = "issue.status_changed"
	EventIssueResolved      EventType = "issue.resolved"
	EventIssueDeleted       EventType = "issue.deleted"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventIssueCreated,
	EventIssueUpdated,
	EventIssueStatusChanged,
	EventIssueResolved,
	EventIssueDeleted,
}

const anonymousActor = "anonymous"

type actorKey struct{}

// WithActor stores the authenticated subject on ctx.
func WithActor(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, actorKey{}, subject)
}

// ActorFromContext returns the subject stored by WithActor, or "anonymous".
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return anonymousActor
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   int64     `json:"issue_id"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an id, actor and timestamp on a new event.
func NewEvent(ctx context.Context, eventType EventType, issueID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issueID,
		Actor:     ActorFromContext(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// IssueSnapshotPayload carries the issue state after a write.
type IssueSnapshotPayload struct {
	Title      string        `json:"title"`
	Status     domain.Status `json:"status"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// Snapshot builds the payload for issue.
func Snapshot(issue *domain.Issue) IssueSnapshotPayload {
	return IssueSnapshotPayload{Title: issue.Title, Status: issue.Status, ResolvedAt: issue.ResolvedAt}
}
