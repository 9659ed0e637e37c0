// Package notifier decouples notification writes from the request
// handlers that trigger them. Handlers enqueue events without blocking;
// a worker goroutine persists them, and a failed write is logged and
// dropped rather than surfaced to the triggering request.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Notifier is an asynchronous, best-effort notification sink
type Notifier struct {
	repo   repositories.NotificationRepository
	log    *logrus.Logger
	events chan *models.Notification
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a Notifier and starts its worker goroutine
func New(repo repositories.NotificationRepository, log *logrus.Logger) *Notifier {
	n := &Notifier{
		repo:   repo,
		log:    log,
		events: make(chan *models.Notification, defaultQueueSize),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// Notify enqueues a notification for persistence. It never blocks: when
// the queue is full the event is dropped and the drop is logged.
func (n *Notifier) Notify(notification *models.Notification) {
	select {
	case n.events <- notification:
	default:
		n.log.WithFields(logrus.Fields{
			"type":      notification.Type,
			"recipient": notification.Recipient.Hex(),
		}).Warn("notification queue full, event dropped")
	}
}

// Close stops accepting events and waits for the queue to drain
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.events)
	})
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for notification := range n.events {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := n.repo.CreateNotification(ctx, notification)
		cancel()
		if err != nil {
			n.log.WithFields(logrus.Fields{
				"type":      notification.Type,
				"recipient": notification.Recipient.Hex(),
			}).WithError(err).Error("failed to persist notification")
		}
	}
}
