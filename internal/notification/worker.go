package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"fleet-ops-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans availability-change notifications out to the planners
// subscribed to the affected operator.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case operatorID := <-wp.jobs:
			wp.notifySubscribers(ctx, operatorID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// AvailabilityPublished queues a notification job for an operator. It never
// blocks the calling request; if the queue is full the job is dropped, the
// availability row itself is already durable.
func (wp *WorkerPool) AvailabilityPublished(operatorID string) {
	select {
	case wp.jobs <- operatorID:
	default:
		log.Printf("notification queue full, dropping job for operator %s", operatorID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// notifySubscribers fetches the subscriptions watching an operator and pushes
// the operator's freshly published PTA to each of them.
func (wp *WorkerPool) notifySubscribers(ctx context.Context, operatorID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_operator_mapping som ON som.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("som.operator_id = ?", operatorID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for operator %s: %v", operatorID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	operatorLabel := operatorID
	var operator model.Operator
	if err := wp.db.WithContext(ctx).Select("name").First(&operator, "id = ?", operatorID).Error; err != nil {
		log.Printf("error fetching operator %s: %v", operatorID, err)
	} else if operator.Name != "" {
		operatorLabel = operator.Name
	}

	var availability model.Availability
	if err := wp.db.WithContext(ctx).First(&availability, "operator_id = ?", operatorID).Error; err != nil {
		log.Printf("error fetching availability for operator %s: %v", operatorID, err)
		return
	}

	message := fmt.Sprintf("Operator %s is projected available at %s",
		operatorLabel, availability.PTA.UTC().Format(time.RFC3339))
	log.Printf("sending %d notifications for operator %s", len(subscriptions), operatorID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are pruned on the spot.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
