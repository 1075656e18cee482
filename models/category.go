package models

import (
	"errors"
	"time"
)

// Category groups testimonials under a tenant-scoped, slug-addressed name
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate validates Category fields
func (c *Category) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if len(c.Name) > 255 {
		return errors.New("name must be <= 255 characters")
	}
	if c.Slug == "" {
		return errors.New("slug is required")
	}
	if len(c.Slug) > 255 {
		return errors.New("slug must be <= 255 characters")
	}
	if c.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
