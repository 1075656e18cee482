package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/testifyhq/testify/models"
)

// MemoryStore is a thread-safe in-memory implementation of Store, used for
// development and tests
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	tokens       map[string]*models.RefreshToken
	apiKeys      map[string]*models.APIKey
	testimonials map[string]*models.Testimonial
	categories   map[string]*models.Category
	tags         map[string]*models.Tag
	config       map[string]string
}

// NewMemoryStore creates a new memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
		apiKeys:      make(map[string]*models.APIKey),
		testimonials: make(map[string]*models.Testimonial),
		categories:   make(map[string]*models.Category),
		tags:         make(map[string]*models.Tag),
		config:       make(map[string]string),
	}
}

// CreateUser creates a new user
func (s *MemoryStore) CreateUser(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	s.users[user.ID] = user
	return nil
}

// GetUserByID retrieves a user by ID
func (s *MemoryStore) GetUserByID(userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsersByOwner returns the tenant root and every member of the tenant,
// oldest first
func (s *MemoryStore) ListUsersByOwner(ownerID string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*models.User
	for _, user := range s.users {
		if user.TenantOwnerID() == ownerID {
			users = append(users, user)
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUser updates an existing user
func (s *MemoryStore) UpdateUser(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; !exists {
		return ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

// SaveRefreshToken saves a refresh token
func (s *MemoryStore) SaveRefreshToken(token *models.RefreshToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.ID] = token
	return nil
}

// GetRefreshTokenByID retrieves a refresh token by ID
func (s *MemoryStore) GetRefreshTokenByID(tokenID string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[tokenID]
	if !exists {
		return nil, ErrNotFound
	}
	return token, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (s *MemoryStore) RevokeRefreshToken(tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, exists := s.tokens[tokenID]
	if !exists {
		return ErrNotFound
	}
	token.Revoked = true
	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (s *MemoryStore) RevokeAllUserTokens(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range s.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

// CreateAPIKey creates a new API key record
func (s *MemoryStore) CreateAPIKey(key *models.APIKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKeys[key.ID] = key
	return nil
}

// GetAPIKeyByID retrieves an API key by ID
func (s *MemoryStore) GetAPIKeyByID(keyID string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.apiKeys[keyID]
	if !exists {
		return nil, ErrNotFound
	}
	return key, nil
}

// ListAPIKeysByPrefix returns all non-revoked API keys with the given prefix.
// Prefixes are short and may collide; every match is returned.
func (s *MemoryStore) ListAPIKeysByPrefix(prefix string) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []*models.APIKey
	for _, key := range s.apiKeys {
		if key.Prefix == prefix && !key.Revoked {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ListAPIKeysByOwner returns a tenant's API keys, newest first
func (s *MemoryStore) ListAPIKeysByOwner(ownerID string, activeOnly bool) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*models.APIKey, 0)
	for _, key := range s.apiKeys {
		if key.OwnerID != ownerID {
			continue
		}
		if activeOnly && key.Revoked {
			continue
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

// UpdateAPIKey updates an existing API key record
func (s *MemoryStore) UpdateAPIKey(key *models.APIKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apiKeys[key.ID]; !exists {
		return ErrNotFound
	}
	s.apiKeys[key.ID] = key
	return nil
}

// CreateTestimonial creates a new testimonial
func (s *MemoryStore) CreateTestimonial(t *models.Testimonial) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.testimonials[t.ID] = t
	return nil
}

// GetTestimonial retrieves a testimonial by ID
func (s *MemoryStore) GetTestimonial(testimonialID string) (*models.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.testimonials[testimonialID]
	if !exists {
		return nil, ErrNotFound
	}
	return t, nil
}

// UpdateTestimonial updates an existing testimonial
func (s *MemoryStore) UpdateTestimonial(t *models.Testimonial) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.testimonials[t.ID]; !exists {
		return ErrNotFound
	}
	s.testimonials[t.ID] = t
	return nil
}

// ListTestimonials returns one page of a tenant's active testimonials plus
// the total count of matches, newest first
func (s *MemoryStore) ListTestimonials(ownerID string, filter TestimonialFilter) ([]*models.Testimonial, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var categoryID string
	if filter.CategorySlug != "" {
		for _, c := range s.categories {
			if c.OwnerID == ownerID && c.Slug == filter.CategorySlug {
				categoryID = c.ID
				break
			}
		}
		if categoryID == "" {
			return []*models.Testimonial{}, 0, nil
		}
	}

	tagIDs := make([]string, 0, len(filter.TagSlugs))
	for _, slug := range filter.TagSlugs {
		found := ""
		for _, tag := range s.tags {
			if tag.OwnerID == ownerID && tag.Slug == slug {
				found = tag.ID
				break
			}
		}
		if found == "" {
			return []*models.Testimonial{}, 0, nil
		}
		tagIDs = append(tagIDs, found)
	}

	var matched []*models.Testimonial
	for _, t := range s.testimonials {
		if t.OwnerID != ownerID || !t.IsActive {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.MinRating > 0 && t.Rating < filter.MinRating {
			continue
		}
		if categoryID != "" && t.CategoryID != categoryID {
			continue
		}
		if filter.Search != "" && !matchesSearch(t, filter.Search) {
			continue
		}
		if len(tagIDs) > 0 && !hasAllTags(t, tagIDs) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	start := filter.Skip
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// GetCategoryBySlug retrieves a tenant's category by slug
func (s *MemoryStore) GetCategoryBySlug(ownerID, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.OwnerID == ownerID && c.Slug == slug {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// GetCategoryByID retrieves a category by ID
func (s *MemoryStore) GetCategoryByID(categoryID string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categories[categoryID]
	if !exists {
		return nil, ErrNotFound
	}
	return c, nil
}

// CreateCategory creates a new category
func (s *MemoryStore) CreateCategory(category *models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.OwnerID == category.OwnerID && existing.Slug == category.Slug {
			return ErrDuplicateSlug
		}
	}

	s.categories[category.ID] = category
	return nil
}

// ListCategories returns all of a tenant's categories
func (s *MemoryStore) ListCategories(ownerID string) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]*models.Category, 0)
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// GetTagBySlug retrieves a tenant's tag by slug
func (s *MemoryStore) GetTagBySlug(ownerID, slug string) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tag := range s.tags {
		if tag.OwnerID == ownerID && tag.Slug == slug {
			return tag, nil
		}
	}
	return nil, ErrNotFound
}

// GetTagsByIDs retrieves tags by their IDs, skipping unknown IDs
func (s *MemoryStore) GetTagsByIDs(tagIDs []string) ([]*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]*models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		if tag, exists := s.tags[id]; exists {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// CreateTag creates a new tag
func (s *MemoryStore) CreateTag(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if existing.OwnerID == tag.OwnerID && existing.Slug == tag.Slug {
			return ErrDuplicateSlug
		}
	}

	s.tags[tag.ID] = tag
	return nil
}

// ListTags returns all of a tenant's tags
func (s *MemoryStore) ListTags(ownerID string) ([]*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]*models.Tag, 0)
	for _, tag := range s.tags {
		if tag.OwnerID == ownerID {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// GetConfig retrieves a system config value
func (s *MemoryStore) GetConfig(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.config[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// SetConfig stores a system config value
func (s *MemoryStore) SetConfig(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config[key] = value
	return nil
}

func matchesSearch(t *models.Testimonial, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.ProductName), search) ||
		strings.Contains(strings.ToLower(t.Content), search)
}

func hasAllTags(t *models.Testimonial, tagIDs []string) bool {
	have := make(map[string]bool, len(t.TagIDs))
	for _, id := range t.TagIDs {
		have[id] = true
	}
	for _, id := range tagIDs {
		if !have[id] {
			return false
		}
	}
	return true
}
