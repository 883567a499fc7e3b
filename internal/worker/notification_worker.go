package worker

import (
	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker subscribes the relay to every issue lifecycle event
// and starts the goroutine that forwards them to the external sink. Callers stop it with NotificationService.Close, which
// drains the queue first.
func StartNotificationWorker(notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	notifications.Start()
}
