package email

import (
	"strings"
	"testing"
)

func TestGeneratePendingReviewEmail(t *testing.T) {
	s := NewEmailService(EmailConfig{
		SMTPHost:   "smtp.example.com",
		AppBaseURL: "https://app.example.com",
	})

	subject, body, err := s.GeneratePendingReviewEmail("Saved our launch", "Widget Pro")
	if err != nil {
		t.Fatalf("GeneratePendingReviewEmail() error = %v, want nil", err)
	}

	if subject == "" {
		t.Error("GeneratePendingReviewEmail() empty subject")
	}
	if !strings.Contains(body, "Saved our launch") {
		t.Error("GeneratePendingReviewEmail() body missing title")
	}
	if !strings.Contains(body, "Widget Pro") {
		t.Error("GeneratePendingReviewEmail() body missing product")
	}
	if !strings.Contains(body, "https://app.example.com/testimonials?status=pending") {
		t.Error("GeneratePendingReviewEmail() body missing review link")
	}
}

func TestGeneratePendingReviewEmail_NoProduct(t *testing.T) {
	s := NewEmailService(EmailConfig{AppBaseURL: "https://app.example.com"})

	_, body, err := s.GeneratePendingReviewEmail("Saved our launch", "")
	if err != nil {
		t.Fatalf("GeneratePendingReviewEmail() error = %v, want nil", err)
	}
	if !strings.Contains(body, "your product") {
		t.Error("GeneratePendingReviewEmail() missing product fallback")
	}
}

func TestGeneratePendingReviewEmail_RequiresTitle(t *testing.T) {
	s := NewEmailService(EmailConfig{})

	if _, _, err := s.GeneratePendingReviewEmail("", "Widget Pro"); err == nil {
		t.Error("GeneratePendingReviewEmail() without title error = nil, want error")
	}
}

func TestEnabled(t *testing.T) {
	if NewEmailService(EmailConfig{}).Enabled() {
		t.Error("Enabled() without host = true, want false")
	}
	if !NewEmailService(EmailConfig{SMTPHost: "smtp.example.com"}).Enabled() {
		t.Error("Enabled() with host = false, want true")
	}
}

func TestSendPendingReviewEmail_RequiresRecipient(t *testing.T) {
	s := NewEmailService(EmailConfig{SMTPHost: "smtp.example.com"})

	if err := s.SendPendingReviewEmail("", "Title", ""); err == nil {
		t.Error("SendPendingReviewEmail() without recipient error = nil, want error")
	}
}
