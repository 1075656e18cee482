package models

import (
	"errors"
	"time"
)

// APIKey represents an issued API key credential. The raw secret is shown
// once at creation and never stored; only a short lookup prefix and a keyed
// digest of the full secret are persisted.
type APIKey struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Prefix       string    `json:"prefix"` // Leading chars of the raw secret, indexed for lookup
	SecretDigest string    `json:"-"`      // HMAC-SHA256 of the raw secret, never expose
	Revoked      bool      `json:"revoked"`
	OwnerID      string    `json:"owner_id"` // Tenant owner, partitions key visibility
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate validates APIKey fields
func (k *APIKey) Validate() error {
	if k.ID == "" {
		return errors.New("id is required")
	}
	if len(k.ID) > 36 {
		return errors.New("id must be <= 36 characters")
	}
	if len(k.Name) > 50 {
		return errors.New("name must be <= 50 characters")
	}
	if k.Prefix == "" {
		return errors.New("prefix is required")
	}
	if len(k.Prefix) > 16 {
		return errors.New("prefix must be <= 16 characters")
	}
	if k.SecretDigest == "" {
		return errors.New("secret_digest is required")
	}
	if len(k.SecretDigest) > 128 {
		return errors.New("secret_digest must be <= 128 characters")
	}
	if k.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
