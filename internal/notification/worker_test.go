package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-ops-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(
		&model.Operator{},
		&model.Availability{},
		&model.PushSubscription{},
	))
	return testDB
}

func seedSubscription(t *testing.T, testDB *gorm.DB, endpoint string) {
	t.Helper()
	operator := model.Operator{ID: "OP1", Name: "Rosa Delgado"}
	require.NoError(t, testDB.Create(&operator).Error)
	require.NoError(t, testDB.Create(&model.Availability{
		OperatorID:   "OP1",
		PTA:          time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Source:       model.AvailabilitySourceAAT,
		Reason:       model.StatusArrivalDestination,
		ComputedFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	subscription := model.PushSubscription{
		Endpoint: endpoint,
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
	}
	require.NoError(t, testDB.Create(&subscription).Error)
	require.NoError(t, testDB.Model(&subscription).Association("Operators").Append(&operator))
}

func TestWorkerPool_AvailabilityPublished(t *testing.T) {
	wp := NewWorkerPool(1, newTestDB(t), &webpush.Options{})

	wp.AvailabilityPublished("OP1")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "OP1", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	wp := NewWorkerPool(1, newTestDB(t), &webpush.Options{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(wp.jobs)+10; i++ {
			wp.AvailabilityPublished("OP1")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("dispatch blocked on a full queue")
	}
}

func TestWorkerPool_SendsNotification(t *testing.T) {
	testDB := newTestDB(t)
	seedSubscription(t, testDB, "https://example.com/push")

	wp := NewWorkerPool(1, testDB, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
			assert.Equal(t, "Operator Rosa Delgado is projected available at 2024-01-01T08:00:00Z", string(payload))
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.AvailabilityPublished("OP1")
	wg.Wait()
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	testDB := newTestDB(t)
	seedSubscription(t, testDB, "https://example.com/expired")

	wp := NewWorkerPool(1, testDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	// Run the job synchronously so the deletion is observable immediately.
	wp.notifySubscribers(context.Background(), "OP1")

	var count int64
	testDB.Model(&model.PushSubscription{}).Count(&count)
	assert.Zero(t, count, "expired subscription should have been pruned")
}

func TestWorkerPool_NoSubscribersSendsNothing(t *testing.T) {
	testDB := newTestDB(t)

	wp := NewWorkerPool(1, testDB, &webpush.Options{})
	sent := false
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sent = true
			return nil, nil
		},
	}

	wp.notifySubscribers(context.Background(), "OP-UNKNOWN")
	assert.False(t, sent)
}
