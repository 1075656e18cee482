package models

import (
	"strings"
	"testing"
	"time"
)

func validTestTestimonial() *Testimonial {
	now := time.Now()
	return &Testimonial{
		ID:        "t-1",
		Title:     "Great product",
		Content:   "It worked well",
		Rating:    5,
		Status:    StatusPending,
		OwnerID:   "owner-1",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTestimonial_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Testimonial)
		wantErr bool
	}{
		{"valid", func(x *Testimonial) {}, false},
		{"missing id", func(x *Testimonial) { x.ID = "" }, true},
		{"missing title", func(x *Testimonial) { x.Title = "" }, true},
		{"title too long", func(x *Testimonial) { x.Title = strings.Repeat("a", 256) }, true},
		{"missing content", func(x *Testimonial) { x.Content = "" }, true},
		{"rating too high", func(x *Testimonial) { x.Rating = 6 }, true},
		{"rating zero", func(x *Testimonial) { x.Rating = 0 }, false},
		{"bad status", func(x *Testimonial) { x.Status = "archived" }, true},
		{"missing owner", func(x *Testimonial) { x.OwnerID = "" }, true},
		{"product optional", func(x *Testimonial) { x.ProductID = ""; x.ProductName = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := validTestTestimonial()
			tt.modify(x)
			err := x.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		if !s.Valid() {
			t.Errorf("Status(%v).Valid() = false, want true", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("Status(archived).Valid() = true, want false")
	}
}
