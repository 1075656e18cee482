package models

import (
	"errors"
	"time"
)

// Status is the moderation state of a testimonial
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Testimonial represents one customer review, owned by a tenant.
// Testimonials are soft-deleted: IsActive is flipped off, rows stay.
type Testimonial struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Rating      int        `json:"rating,omitempty"`
	AuthorName  string     `json:"author_name,omitempty"`
	YoutubeURL  string     `json:"youtube_url,omitempty"`
	ImageURLs   []string   `json:"image_urls,omitempty"`
	Status      Status     `json:"status"`
	OwnerID     string     `json:"owner_id"`
	CategoryID  string     `json:"category_id,omitempty"`
	TagIDs      []string   `json:"-"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate validates Testimonial fields
func (t *Testimonial) Validate() error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if len(t.ProductID) > 100 {
		return errors.New("product_id must be <= 100 characters")
	}
	if len(t.ProductName) > 255 {
		return errors.New("product_name must be <= 255 characters")
	}
	if t.Title == "" {
		return errors.New("title is required")
	}
	if len(t.Title) > 255 {
		return errors.New("title must be <= 255 characters")
	}
	if t.Content == "" {
		return errors.New("content is required")
	}
	if len(t.Content) > 10000 {
		return errors.New("content must be <= 10000 characters")
	}
	if t.Rating < 0 || t.Rating > 5 {
		return errors.New("rating must be 0-5")
	}
	if len(t.AuthorName) > 200 {
		return errors.New("author_name must be <= 200 characters")
	}
	if !t.Status.Valid() {
		return errors.New("status must be one of: pending, approved, rejected")
	}
	if t.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
