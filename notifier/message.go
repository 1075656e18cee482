package notifier

import (
	"encoding/json"
	"fmt"
	"time"
)

// WebhookPayload represents the notification payload format
type WebhookPayload struct {
	MsgType string         `json:"msg_type"`
	Content WebhookContent `json:"content"`
}

// WebhookContent represents the content field of the webhook payload
type WebhookContent struct {
	Text string `json:"text"`
}

// NotificationData contains all information needed for notification
type NotificationData struct {
	TestimonialID string
	Title         string
	ProductName   string
	AuthorName    string
	Rating        int
	Status        string
	SubmittedAt   time.Time
}

// FormatMessage creates a human-readable notification message
func FormatMessage(data *NotificationData) string {
	msg := fmt.Sprintf(
		"🔔 New Testimonial Submitted\n\n"+
			"ID: %s\n"+
			"Title: %s\n"+
			"Status: %s\n"+
			"Submitted: %s",
		data.TestimonialID,
		data.Title,
		data.Status,
		data.SubmittedAt.Format(time.RFC3339),
	)

	if data.ProductName != "" {
		msg += fmt.Sprintf("\nProduct: %s", data.ProductName)
	}

	if data.AuthorName != "" {
		msg += fmt.Sprintf("\nAuthor: %s", data.AuthorName)
	}

	if data.Rating > 0 {
		msg += fmt.Sprintf("\nRating: %d/5", data.Rating)
	}

	return msg
}

// BuildPayload creates the webhook payload in JSON format
func BuildPayload(data *NotificationData) ([]byte, error) {
	payload := WebhookPayload{
		MsgType: "text",
		Content: WebhookContent{
			Text: FormatMessage(data),
		},
	}
	return json.Marshal(payload)
}
