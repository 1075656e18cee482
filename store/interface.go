package store

import "github.com/testifyhq/testify/models"

// DefaultPageSize is used when a listing request does not set a limit
const DefaultPageSize = 20

// Store defines the interface for data storage implementations
// Different storage backends (memory, postgres, etc.) can implement this interface
type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsersByOwner(ownerID string) ([]*models.User, error)
	UpdateUser(user *models.User) error

	// Refresh token operations
	SaveRefreshToken(token *models.RefreshToken) error
	GetRefreshTokenByID(tokenID string) (*models.RefreshToken, error)
	RevokeRefreshToken(tokenID string) error
	RevokeAllUserTokens(userID string) error

	// API key operations (satisfies apikeys.Store)
	CreateAPIKey(key *models.APIKey) error
	GetAPIKeyByID(keyID string) (*models.APIKey, error)
	ListAPIKeysByPrefix(prefix string) ([]*models.APIKey, error)
	ListAPIKeysByOwner(ownerID string, activeOnly bool) ([]*models.APIKey, error)
	UpdateAPIKey(key *models.APIKey) error

	// Testimonial operations
	CreateTestimonial(t *models.Testimonial) error
	GetTestimonial(testimonialID string) (*models.Testimonial, error)
	UpdateTestimonial(t *models.Testimonial) error
	ListTestimonials(ownerID string, filter TestimonialFilter) ([]*models.Testimonial, int, error)

	// Category operations
	GetCategoryBySlug(ownerID, slug string) (*models.Category, error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	CreateCategory(category *models.Category) error
	ListCategories(ownerID string) ([]*models.Category, error)

	// Tag operations
	GetTagBySlug(ownerID, slug string) (*models.Tag, error)
	GetTagsByIDs(tagIDs []string) ([]*models.Tag, error)
	CreateTag(tag *models.Tag) error
	ListTags(ownerID string) ([]*models.Tag, error)

	// System config operations
	GetConfig(key string) (string, error)
	SetConfig(key, value string) error
}

// TestimonialFilter narrows and pages a tenant's testimonial listing.
// Zero values mean "no filter"; Limit 0 means the default page size.
type TestimonialFilter struct {
	Search       string   // substring match on title, product name or content
	Status       string   // pending, approved or rejected
	MinRating    int      // testimonials rated at least this value
	CategorySlug string   // testimonials in the category with this slug
	TagSlugs     []string // testimonials carrying ALL of these tags
	Skip         int
	Limit        int
}
