package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
)

// RelayQueueSize bounds the events waiting for the external sink. Events
// dispatched while the queue is full are dropped and logged.
const RelayQueueSize = 256

// NotificationService relays issue events to the configured external sink.
// Dispatch only enqueues; the loop started by Start does the publishing.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	logger     *zap.Logger

	mu      sync.RWMutex
	queue   chan events.Event
	done    chan struct{}
	started bool
	closed  bool
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher events.Publisher, logger *zap.Logger) *NotificationService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		queue:      make(chan events.Event, RelayQueueSize),
		done:       make(chan struct{}),
	}
}

// RegisterHandlers subscribes the relay to every issue event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.relay)
	}
}

// Start launches the loop that publishes queued events. Calling it more than
// once, or after Close, does nothing.
func (n *NotificationService) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started || n.closed {
		return
	}
	n.started = true
	go n.run()
}

// Close stops accepting events and blocks until every queued event has been
// handed to the publisher. It does not close the publisher.
func (n *NotificationService) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
		if !n.started {
			n.started = true
			go n.run()
		}
	}
	n.mu.Unlock()
	<-n.done
	return nil
}

func (n *NotificationService) relay(_ context.Context, event events.Event) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Debug("relay closed; event not published", eventFields(event)...)
		return nil
	}
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("relay queue full; dropping event", eventFields(event)...)
	}
	return nil
}

func (n *NotificationService) run() {
	defer close(n.done)
	for event := range n.queue {
		n.logger.Debug("relaying event", eventFields(event)...)
		if err := n.publisher.Publish(context.Background(), event); err != nil {
			n.logger.Warn("publish event", append(eventFields(event), zap.Error(err))...)
		}
	}
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("issue_id", event.IssueID),
		zap.String("actor", event.Actor),
	}
}
