package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/testifyhq/testify/models"
)

const queryTimeout = 5 * time.Second

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store connection
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool returns the underlying connection pool
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateUser creates a new user
func (s *PostgresStore) CreateUser(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, email, password_hash, name, surname, role, owner_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Surname,
		string(user.Role),
		user.OwnerID,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *PostgresStore) GetUserByID(userID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, surname, role, COALESCE(owner_id, ''), is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, userID))
}

// GetUserByEmail retrieves a user by email
func (s *PostgresStore) GetUserByEmail(email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, surname, role, COALESCE(owner_id, ''), is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Surname,
		&role,
		&user.OwnerID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = models.Role(role)
	return &user, nil
}

// ListUsersByOwner returns the tenant root and every member of the tenant,
// oldest first
func (s *PostgresStore) ListUsersByOwner(ownerID string) ([]*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, surname, role, COALESCE(owner_id, ''), is_active, created_at, updated_at
		FROM users
		WHERE id = $1 OR owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var role string
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.Surname,
			&role,
			&user.OwnerID,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = models.Role(role)
		users = append(users, &user)
	}

	return users, rows.Err()
}

// UpdateUser updates an existing user
func (s *PostgresStore) UpdateUser(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET email = $2, password_hash = $3, name = $4, surname = $5, role = $6,
		    owner_id = NULLIF($7, ''), is_active = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Surname,
		string(user.Role),
		user.OwnerID,
		user.IsActive,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveRefreshToken saves a refresh token
func (s *PostgresStore) SaveRefreshToken(token *models.RefreshToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
		token.Revoked,
	)

	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshTokenByID retrieves a refresh token by ID
func (s *PostgresStore) GetRefreshTokenByID(tokenID string) (*models.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE id = $1
	`

	var token models.RefreshToken
	err := s.pool.QueryRow(ctx, query, tokenID).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.Revoked,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &token, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (s *PostgresStore) RevokeRefreshToken(tokenID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (s *PostgresStore) RevokeAllUserTokens(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}

// CreateAPIKey creates a new API key record
func (s *PostgresStore) CreateAPIKey(key *models.APIKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO api_keys (id, name, prefix, secret_digest, revoked, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.Prefix,
		key.SecretDigest,
		key.Revoked,
		key.OwnerID,
		key.CreatedAt,
		key.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// GetAPIKeyByID retrieves an API key by ID
func (s *PostgresStore) GetAPIKeyByID(keyID string) (*models.APIKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, prefix, secret_digest, revoked, owner_id, created_at, updated_at
		FROM api_keys
		WHERE id = $1
	`

	var key models.APIKey
	err := s.pool.QueryRow(ctx, query, keyID).Scan(
		&key.ID,
		&key.Name,
		&key.Prefix,
		&key.SecretDigest,
		&key.Revoked,
		&key.OwnerID,
		&key.CreatedAt,
		&key.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &key, nil
}

// ListAPIKeysByPrefix returns all non-revoked API keys with the given prefix.
// The prefix column is indexed but not unique; all matches are returned.
func (s *PostgresStore) ListAPIKeysByPrefix(prefix string) ([]*models.APIKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, prefix, secret_digest, revoked, owner_id, created_at, updated_at
		FROM api_keys
		WHERE prefix = $1 AND revoked = FALSE
	`

	rows, err := s.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

// ListAPIKeysByOwner returns a tenant's API keys, newest first
func (s *PostgresStore) ListAPIKeysByOwner(ownerID string, activeOnly bool) ([]*models.APIKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, prefix, secret_digest, revoked, owner_id, created_at, updated_at
		FROM api_keys
		WHERE owner_id = $1 AND (NOT $2 OR revoked = FALSE)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	keys := make([]*models.APIKey, 0)
	for rows.Next() {
		var key models.APIKey
		if err := rows.Scan(
			&key.ID,
			&key.Name,
			&key.Prefix,
			&key.SecretDigest,
			&key.Revoked,
			&key.OwnerID,
			&key.CreatedAt,
			&key.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read api keys: %w", err)
	}
	return keys, nil
}

// UpdateAPIKey updates an existing API key record
func (s *PostgresStore) UpdateAPIKey(key *models.APIKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		UPDATE api_keys
		SET name = $2, revoked = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, key.ID, key.Name, key.Revoked, key.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateTestimonial creates a new testimonial and its tag links
func (s *PostgresStore) CreateTestimonial(t *models.Testimonial) error {
	if err := t.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO testimonials (id, product_id, product_name, title, content, rating, author_name,
		                          youtube_url, image_urls, status, owner_id, category_id, is_active,
		                          deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14, $15, $16)
	`

	_, err = tx.Exec(ctx, query,
		t.ID,
		t.ProductID,
		t.ProductName,
		t.Title,
		t.Content,
		t.Rating,
		t.AuthorName,
		t.YoutubeURL,
		t.ImageURLs,
		string(t.Status),
		t.OwnerID,
		t.CategoryID,
		t.IsActive,
		t.DeletedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}

	if err := replaceTagLinks(ctx, tx, t.ID, t.TagIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTestimonial retrieves a testimonial by ID
func (s *PostgresStore) GetTestimonial(testimonialID string) (*models.Testimonial, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT t.id, t.product_id, t.product_name, t.title, t.content, t.rating, t.author_name,
		       t.youtube_url, t.image_urls, t.status, t.owner_id, COALESCE(t.category_id, ''),
		       t.is_active, t.deleted_at, t.created_at, t.updated_at,
		       COALESCE(array_agg(tt.tag_id) FILTER (WHERE tt.tag_id IS NOT NULL), '{}')
		FROM testimonials t
		LEFT JOIN testimonial_tags tt ON tt.testimonial_id = t.id
		WHERE t.id = $1
		GROUP BY t.id
	`

	t, err := scanTestimonial(s.pool.QueryRow(ctx, query, testimonialID))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTestimonial(row pgx.Row) (*models.Testimonial, error) {
	var t models.Testimonial
	var status string
	err := row.Scan(
		&t.ID,
		&t.ProductID,
		&t.ProductName,
		&t.Title,
		&t.Content,
		&t.Rating,
		&t.AuthorName,
		&t.YoutubeURL,
		&t.ImageURLs,
		&status,
		&t.OwnerID,
		&t.CategoryID,
		&t.IsActive,
		&t.DeletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.TagIDs,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get testimonial: %w", err)
	}

	t.Status = models.Status(status)
	return &t, nil
}

// UpdateTestimonial updates an existing testimonial and its tag links
func (s *PostgresStore) UpdateTestimonial(t *models.Testimonial) error {
	if err := t.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE testimonials
		SET product_id = $2, product_name = $3, title = $4, content = $5, rating = $6,
		    author_name = $7, youtube_url = $8, image_urls = $9, status = $10,
		    category_id = NULLIF($11, ''), is_active = $12, deleted_at = $13, updated_at = $14
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		t.ID,
		t.ProductID,
		t.ProductName,
		t.Title,
		t.Content,
		t.Rating,
		t.AuthorName,
		t.YoutubeURL,
		t.ImageURLs,
		string(t.Status),
		t.CategoryID,
		t.IsActive,
		t.DeletedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update testimonial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := replaceTagLinks(ctx, tx, t.ID, t.TagIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func replaceTagLinks(ctx context.Context, tx pgx.Tx, testimonialID string, tagIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM testimonial_tags WHERE testimonial_id = $1`, testimonialID); err != nil {
		return fmt.Errorf("failed to clear tag links: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO testimonial_tags (testimonial_id, tag_id) VALUES ($1, $2)`,
			testimonialID, tagID)
		if err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}
	return nil
}

// ListTestimonials returns one page of a tenant's active testimonials plus
// the total count of matches, newest first
func (s *PostgresStore) ListTestimonials(ownerID string, filter TestimonialFilter) ([]*models.Testimonial, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	conditions := []string{"t.owner_id = $1", "t.is_active = TRUE"}
	args := []interface{}{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(t.title ILIKE $%d OR t.product_name ILIKE $%d OR t.content ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		conditions = append(conditions, fmt.Sprintf("t.rating >= $%d", len(args)))
	}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf(
			"t.category_id IN (SELECT id FROM categories WHERE owner_id = t.owner_id AND slug = $%d)", len(args)))
	}
	for _, slug := range filter.TagSlugs {
		args = append(args, slug)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM testimonial_tags tt
			         JOIN tags tg ON tg.id = tt.tag_id
			         WHERE tt.testimonial_id = t.id AND tg.owner_id = t.owner_id AND tg.slug = $%d)`, len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM testimonials t WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count testimonials: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	args = append(args, limit, filter.Skip)

	query := fmt.Sprintf(`
		SELECT t.id, t.product_id, t.product_name, t.title, t.content, t.rating, t.author_name,
		       t.youtube_url, t.image_urls, t.status, t.owner_id, COALESCE(t.category_id, ''),
		       t.is_active, t.deleted_at, t.created_at, t.updated_at,
		       COALESCE(array_agg(tt.tag_id) FILTER (WHERE tt.tag_id IS NOT NULL), '{}')
		FROM testimonials t
		LEFT JOIN testimonial_tags tt ON tt.testimonial_id = t.id
		WHERE %s
		GROUP BY t.id
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	testimonials := make([]*models.Testimonial, 0)
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, err
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read testimonials: %w", err)
	}

	return testimonials, total, nil
}

// GetCategoryBySlug retrieves a tenant's category by slug
func (s *PostgresStore) GetCategoryBySlug(ownerID, slug string) (*models.Category, error) {
	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM categories
		WHERE owner_id = $1 AND slug = $2
	`
	return s.queryCategory(query, ownerID, slug)
}

// GetCategoryByID retrieves a category by ID
func (s *PostgresStore) GetCategoryByID(categoryID string) (*models.Category, error) {
	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	return s.queryCategory(query, categoryID)
}

func (s *PostgresStore) queryCategory(query string, args ...interface{}) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var c models.Category
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.OwnerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

// CreateCategory creates a new category
func (s *PostgresStore) CreateCategory(category *models.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO categories (id, name, slug, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Slug,
		category.OwnerID,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// ListCategories returns all of a tenant's categories ordered by name
func (s *PostgresStore) ListCategories(ownerID string) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM categories
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

// GetTagBySlug retrieves a tenant's tag by slug
func (s *PostgresStore) GetTagBySlug(ownerID, slug string) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM tags
		WHERE owner_id = $1 AND slug = $2
	`

	var tag models.Tag
	err := s.pool.QueryRow(ctx, query, ownerID, slug).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Slug,
		&tag.OwnerID,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

// GetTagsByIDs retrieves tags by their IDs, skipping unknown IDs
func (s *PostgresStore) GetTagsByIDs(tagIDs []string) ([]*models.Tag, error) {
	if len(tagIDs) == 0 {
		return []*models.Tag{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM tags
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := s.pool.Query(ctx, query, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// CreateTag creates a new tag
func (s *PostgresStore) CreateTag(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO tags (id, name, slug, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		tag.ID,
		tag.Name,
		tag.Slug,
		tag.OwnerID,
		tag.CreatedAt,
		tag.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// ListTags returns all of a tenant's tags ordered by name
func (s *PostgresStore) ListTags(ownerID string) ([]*models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, slug, owner_id, created_at, updated_at
		FROM tags
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

func scanTags(rows pgx.Rows) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0)
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.OwnerID, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return tags, nil
}

// GetConfig retrieves a system config value
func (s *PostgresStore) GetConfig(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM system_config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get config: %w", err)
	}

	return value, nil
}

// SetConfig stores a system config value
func (s *PostgresStore) SetConfig(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		INSERT INTO system_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := s.pool.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}

	return nil
}
