package models

import (
	"errors"
	"time"
)

// Tag labels testimonials; tags are tenant-scoped and slug-addressed
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate validates Tag fields
func (t *Tag) Validate() error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if t.Name == "" {
		return errors.New("name is required")
	}
	if len(t.Name) > 100 {
		return errors.New("name must be <= 100 characters")
	}
	if t.Slug == "" {
		return errors.New("slug is required")
	}
	if len(t.Slug) > 100 {
		return errors.New("slug must be <= 100 characters")
	}
	if t.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
