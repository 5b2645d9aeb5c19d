// Package notify delivers workflow transition events to interested parties.
// Delivery is fire-and-forget: the workflow service emits events after a
// successful commit and never fails an operation over a notification problem.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TransitionEvent describes one status change of a workflow entity.
type TransitionEvent struct {
	EventID    string    `json:"event_id"`
	EntityType string    `json:"entity_type"` // "department_task" or "member_task"
	EntityID   int       `json:"entity_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    int       `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTransitionEvent builds an event with a fresh ID and timestamp.
func NewTransitionEvent(entityType string, entityID int, from, to string, actorID int) TransitionEvent {
	return TransitionEvent{
		EventID:    uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier receives transition events. Implementations must not block the
// caller for long and must swallow their own delivery failures.
type Notifier interface {
	NotifyTransition(ctx context.Context, event TransitionEvent)
}

// LogNotifier writes transition events to the structured log. It stands in
// for a real push channel (email, chat webhook) in deployments without one.
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier creates a notifier that logs events through log.
func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyTransition logs the event with structured fields.
func (n *LogNotifier) NotifyTransition(_ context.Context, event TransitionEvent) {
	n.log.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"entity_type": event.EntityType,
		"entity_id":   event.EntityID,
		"from_status": event.FromStatus,
		"to_status":   event.ToStatus,
		"actor_id":    event.ActorID,
		"occurred_at": event.OccurredAt,
	}).Info("workflow transition")
}
