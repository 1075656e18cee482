// Package apikeys implements the API key credential subsystem: issuance of
// opaque bearer secrets, irreversible digest storage, constant-time
// verification and tenant-scoped revocation and listing.
package apikeys

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/store"
)

// ErrNotFound is returned for every verification or lookup miss: malformed
// token, unknown prefix, digest mismatch, revoked key, or a key belonging to
// another tenant. Callers cannot distinguish these cases.
var ErrNotFound = errors.New("api key not found")

// Store is the persistence surface the service needs. Both the memory and
// postgres store implementations satisfy it.
type Store interface {
	CreateAPIKey(key *models.APIKey) error
	GetAPIKeyByID(keyID string) (*models.APIKey, error)
	// ListAPIKeysByPrefix returns non-revoked keys whose stored prefix equals
	// the given value. Prefixes are not unique; all candidates are returned.
	ListAPIKeysByPrefix(prefix string) ([]*models.APIKey, error)
	ListAPIKeysByOwner(ownerID string, activeOnly bool) ([]*models.APIKey, error)
	UpdateAPIKey(key *models.APIKey) error
}

// Config holds the credential parameters. Secret is the server-held HMAC
// key: loaded once at startup, shared read-only, never logged.
type Config struct {
	DisplayPrefix   string // Brand tag embedded in every issued secret, e.g. "tsy_"
	PrefixBodyChars int    // Extra chars beyond the display prefix kept as lookup prefix
	SecretLength    int    // Bytes of entropy in the token body
	Secret          []byte
}

// DefaultConfig returns the credential parameters used in production,
// missing only the HMAC secret.
func DefaultConfig() Config {
	return Config{
		DisplayPrefix:   "tsy_",
		PrefixBodyChars: 4,
		SecretLength:    48,
	}
}

// Service issues and verifies API key credentials against an injected store.
// It keeps no mutable state; all methods are safe for concurrent use.
type Service struct {
	store Store
	cfg   Config
}

// NewService creates a credential service
func NewService(store Store, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("api key secret is required")
	}
	if cfg.DisplayPrefix == "" {
		return nil, errors.New("display prefix is required")
	}
	if cfg.PrefixBodyChars <= 0 {
		return nil, errors.New("prefix body chars must be positive")
	}
	if cfg.SecretLength <= 0 {
		return nil, errors.New("secret length must be positive")
	}
	return &Service{store: store, cfg: cfg}, nil
}

// IssuedKey is the one-time creation result. RawSecret is not recoverable
// after this value is discarded.
type IssuedKey struct {
	ID        string
	Name      string
	RawSecret string
}

// GenerateSecretPair draws a random token body and derives the stored
// artifacts: the full raw secret, its lookup prefix, and the keyed digest.
func (s *Service) GenerateSecretPair() (raw, prefix, digest string, err error) {
	body := make([]byte, s.cfg.SecretLength)
	if _, err := rand.Read(body); err != nil {
		return "", "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	raw = s.cfg.DisplayPrefix + base64.RawURLEncoding.EncodeToString(body)
	prefix = raw[:len(s.cfg.DisplayPrefix)+s.cfg.PrefixBodyChars]
	digest = s.digest(raw)
	return raw, prefix, digest, nil
}

// Issue creates and persists a new API key for the tenant owner. The raw
// secret is returned exactly once; only its prefix and digest are stored.
func (s *Service) Issue(ownerID, name string) (*IssuedKey, error) {
	raw, prefix, digest, err := s.GenerateSecretPair()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	key := &models.APIKey{
		ID:           uuid.New().String(),
		Name:         name,
		Prefix:       prefix,
		SecretDigest: digest,
		Revoked:      false,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := key.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateAPIKey(key); err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return &IssuedKey{ID: key.ID, Name: name, RawSecret: raw}, nil
}

// Verify checks a presented raw token and returns the matching key record.
// Tokens too short to carry the display prefix are rejected without a store
// lookup. The prefix narrows the search to a small candidate set; every
// candidate is checked, since short prefixes may collide. Digests are
// compared in constant time. Verify never mutates the record.
func (s *Service) Verify(rawToken string) (*models.APIKey, error) {
	if len(rawToken) < len(s.cfg.DisplayPrefix)+1 {
		return nil, ErrNotFound
	}

	prefixLen := len(s.cfg.DisplayPrefix) + s.cfg.PrefixBodyChars
	if len(rawToken) < prefixLen {
		return nil, ErrNotFound
	}

	candidates, err := s.store.ListAPIKeysByPrefix(rawToken[:prefixLen])
	if err != nil {
		return nil, fmt.Errorf("failed to look up api keys: %w", err)
	}

	incoming := []byte(s.digest(rawToken))
	for _, key := range candidates {
		if key.Revoked {
			continue
		}
		if hmac.Equal(incoming, []byte(key.SecretDigest)) {
			return key, nil
		}
	}
	return nil, ErrNotFound
}

// Revoke marks the key revoked. A missing id and an id owned by another
// tenant produce the same ErrNotFound, so the call leaks nothing about keys
// outside the caller's tenant. Revoking an already-revoked key succeeds;
// there is no un-revoke.
func (s *Service) Revoke(keyID, ownerID string) error {
	key, err := s.store.GetAPIKeyByID(keyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get api key: %w", err)
	}

	if key.OwnerID != ownerID {
		return ErrNotFound
	}

	key.Revoked = true
	key.UpdatedAt = time.Now()
	if err := s.store.UpdateAPIKey(key); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return nil
}

// ListActive returns the tenant's non-revoked keys, most recent first
func (s *Service) ListActive(ownerID string) ([]*models.APIKey, error) {
	keys, err := s.store.ListAPIKeysByOwner(ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

// digest computes the hex HMAC-SHA256 of the raw secret under the server key
func (s *Service) digest(raw string) string {
	mac := hmac.New(sha256.New, s.cfg.Secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
