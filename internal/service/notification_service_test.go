package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/internal/worker"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	// gate, when set, holds every Publish until it is closed.
	gate chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func TestNotificationServiceRelaysIssueEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{}
	notifications := service.NewNotificationService(dispatcher, pub, zap.NewNop())
	worker.StartNotificationWorker(notifications)

	svc := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  repository.NewMemoryIssueRepository(),
		Dispatcher: dispatcher,
	})

	ctx := events.WithActor(context.Background(), "bob")
	issue, err := svc.Create(ctx, service.IssueCreateInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, issue.ID))
	require.NoError(t, notifications.Close())

	got := pub.published()
	require.Len(t, got, 2)
	assert.Equal(t, events.EventIssueCreated, got[0].Type)
	assert.Equal(t, events.EventIssueDeleted, got[1].Type)
	assert.Equal(t, "bob", got[1].Actor)
	assert.Equal(t, issue.ID, got[1].IssueID)
}

func TestNotificationServiceDoesNotBlockOnSlowSink(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{gate: make(chan struct{})}
	notifications := service.NewNotificationService(dispatcher, pub, zap.NewNop())
	worker.StartNotificationWorker(notifications)

	svc := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  repository.NewMemoryIssueRepository(),
		Dispatcher: dispatcher,
	})

	created := make(chan error, 1)
	go func() {
		_, err := svc.Create(context.Background(), service.IssueCreateInput{Title: "t", Description: "d"})
		created <- err
	}()
	select {
	case err := <-created:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(pub.gate)
		t.Fatal("create waited on the event sink")
	}
	assert.Empty(t, pub.published())

	close(pub.gate)
	require.NoError(t, notifications.Close())
	assert.Len(t, pub.published(), 1)
}

func TestNotificationServiceCloseDrainsWithoutStart(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &recordingPublisher{}
	notifications := service.NewNotificationService(dispatcher, pub, zap.NewNop())
	notifications.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(context.Background(), events.EventIssueCreated, 4, nil)))
	require.NoError(t, notifications.Close())
	require.NoError(t, notifications.Close())
	assert.Len(t, pub.published(), 1)

	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(context.Background(), events.EventIssueDeleted, 4, nil)))
	assert.Len(t, pub.published(), 1)
}
