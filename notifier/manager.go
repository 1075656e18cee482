package notifier

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// NotificationManager manages async notification delivery for newly
// submitted testimonials
type NotificationManager struct {
	enabled  bool
	client   *HTTPClient
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool
}

// NewNotificationManager creates a new notification manager. If webhookURL
// is empty, notifications are disabled and Notify becomes a no-op.
func NewNotificationManager(webhookURL string, timeout time.Duration) *NotificationManager {
	if webhookURL == "" {
		log.Println("Webhook notifications disabled (NOTIFICATION_WEBHOOK_URL not set)")
		return &NotificationManager{enabled: false}
	}

	log.Printf("Webhook notifications enabled: %s", webhookURL)
	return &NotificationManager{
		enabled: true,
		client:  NewHTTPClient(webhookURL, timeout),
	}
}

// Notify sends a notification asynchronously
func (nm *NotificationManager) Notify(ctx context.Context, data *NotificationData) error {
	if !nm.enabled {
		return nil
	}

	nm.mu.Lock()
	if nm.shutdown {
		nm.mu.Unlock()
		return nil
	}
	nm.mu.Unlock()

	payload, err := BuildPayload(data)
	if err != nil {
		return fmt.Errorf("failed to build payload: %w", err)
	}

	nm.wg.Add(1)
	go func() {
		defer nm.wg.Done()

		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := nm.client.Send(notifyCtx, payload); err != nil {
			log.Printf("Failed to send notification: %v", err)
		}
	}()

	return nil
}

// Shutdown waits for pending notifications to finish or the context to expire
func (nm *NotificationManager) Shutdown(ctx context.Context) error {
	nm.mu.Lock()
	if nm.shutdown {
		nm.mu.Unlock()
		return nil
	}
	nm.shutdown = true
	nm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		nm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: some notifications may not have completed")
	}
}
