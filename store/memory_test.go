package store

import (
	"testing"
	"time"

	"github.com/testifyhq/testify/models"
)

func testUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testTestimonial(id, ownerID string, created time.Time) *models.Testimonial {
	return &models.Testimonial{
		ID:        id,
		Title:     "Great product",
		Content:   "It worked well",
		Status:    models.StatusPending,
		OwnerID:   ownerID,
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMemoryStore_CreateUser_DuplicateEmail(t *testing.T) {
	s := NewMemoryStore()

	if err := s.CreateUser(testUser("u1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser() error = %v, want nil", err)
	}

	err := s.CreateUser(testUser("u2", "a@example.com"))
	if err != ErrDuplicateEmail {
		t.Errorf("CreateUser() duplicate error = %v, want ErrDuplicateEmail", err)
	}
}

func TestMemoryStore_GetUserByEmail(t *testing.T) {
	s := NewMemoryStore()
	s.CreateUser(testUser("u1", "a@example.com"))

	user, err := s.GetUserByEmail("a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v, want nil", err)
	}
	if user.ID != "u1" {
		t.Errorf("GetUserByEmail() id = %v, want u1", user.ID)
	}

	if _, err := s.GetUserByEmail("missing@example.com"); err != ErrNotFound {
		t.Errorf("GetUserByEmail() missing error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListUsersByOwner(t *testing.T) {
	s := NewMemoryStore()

	root := testUser("u1", "root@example.com")
	root.CreatedAt = time.Now().Add(-2 * time.Hour)
	s.CreateUser(root)

	member := testUser("u2", "member@example.com")
	member.Role = models.RoleUser
	member.OwnerID = "u1"
	member.CreatedAt = time.Now().Add(-1 * time.Hour)
	s.CreateUser(member)

	// Unrelated tenant
	s.CreateUser(testUser("u3", "other@example.com"))

	users, err := s.ListUsersByOwner("u1")
	if err != nil {
		t.Fatalf("ListUsersByOwner() error = %v, want nil", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsersByOwner() returned %d users, want 2", len(users))
	}
	// Oldest first, the root precedes its members
	if users[0].ID != "u1" || users[1].ID != "u2" {
		t.Errorf("ListUsersByOwner() order = [%v, %v], want [u1, u2]", users[0].ID, users[1].ID)
	}
}

func TestMemoryStore_RefreshTokens(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	for _, id := range []string{"t1", "t2"} {
		err := s.SaveRefreshToken(&models.RefreshToken{
			ID:        id,
			UserID:    "u1",
			TokenHash: "hash",
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("SaveRefreshToken() error = %v, want nil", err)
		}
	}

	if err := s.RevokeRefreshToken("t1"); err != nil {
		t.Fatalf("RevokeRefreshToken() error = %v, want nil", err)
	}
	token, _ := s.GetRefreshTokenByID("t1")
	if !token.Revoked {
		t.Error("RevokeRefreshToken() token still active")
	}

	if err := s.RevokeAllUserTokens("u1"); err != nil {
		t.Fatalf("RevokeAllUserTokens() error = %v, want nil", err)
	}
	token, _ = s.GetRefreshTokenByID("t2")
	if !token.Revoked {
		t.Error("RevokeAllUserTokens() token still active")
	}
}

func TestMemoryStore_ListAPIKeysByPrefix(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	keys := []*models.APIKey{
		{ID: "k1", Prefix: "tsy_aaaa", SecretDigest: "d1", OwnerID: "u1", CreatedAt: now, UpdatedAt: now},
		{ID: "k2", Prefix: "tsy_aaaa", SecretDigest: "d2", OwnerID: "u2", CreatedAt: now, UpdatedAt: now},
		{ID: "k3", Prefix: "tsy_bbbb", SecretDigest: "d3", OwnerID: "u1", CreatedAt: now, UpdatedAt: now},
		{ID: "k4", Prefix: "tsy_aaaa", SecretDigest: "d4", OwnerID: "u1", Revoked: true, CreatedAt: now, UpdatedAt: now},
	}
	for _, k := range keys {
		if err := s.CreateAPIKey(k); err != nil {
			t.Fatalf("CreateAPIKey(%s) error = %v, want nil", k.ID, err)
		}
	}

	// Collisions across tenants are all returned; revoked keys are not
	matches, err := s.ListAPIKeysByPrefix("tsy_aaaa")
	if err != nil {
		t.Fatalf("ListAPIKeysByPrefix() error = %v, want nil", err)
	}
	if len(matches) != 2 {
		t.Fatalf("ListAPIKeysByPrefix() returned %d keys, want 2", len(matches))
	}
	for _, k := range matches {
		if k.Revoked {
			t.Error("ListAPIKeysByPrefix() returned a revoked key")
		}
	}
}

func TestMemoryStore_ListAPIKeysByOwner(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()

	for i, id := range []string{"k1", "k2", "k3"} {
		k := &models.APIKey{
			ID: id, Prefix: "tsy_" + id, SecretDigest: "d", OwnerID: "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base,
		}
		if err := s.CreateAPIKey(k); err != nil {
			t.Fatalf("CreateAPIKey() error = %v, want nil", err)
		}
	}

	k2, _ := s.GetAPIKeyByID("k2")
	k2.Revoked = true
	if err := s.UpdateAPIKey(k2); err != nil {
		t.Fatalf("UpdateAPIKey() error = %v, want nil", err)
	}

	all, err := s.ListAPIKeysByOwner("u1", false)
	if err != nil {
		t.Fatalf("ListAPIKeysByOwner() error = %v, want nil", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAPIKeysByOwner(all) returned %d keys, want 3", len(all))
	}
	// Newest first
	if all[0].ID != "k3" || all[2].ID != "k1" {
		t.Errorf("ListAPIKeysByOwner() order = [%s %s %s], want [k3 k2 k1]", all[0].ID, all[1].ID, all[2].ID)
	}

	active, err := s.ListAPIKeysByOwner("u1", true)
	if err != nil {
		t.Fatalf("ListAPIKeysByOwner() error = %v, want nil", err)
	}
	if len(active) != 2 {
		t.Fatalf("ListAPIKeysByOwner(active) returned %d keys, want 2", len(active))
	}
}

func TestMemoryStore_ListTestimonials_Filters(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()

	approved := testTestimonial("t1", "u1", base.Add(1*time.Minute))
	approved.Status = models.StatusApproved
	approved.Rating = 5
	approved.ProductName = "Widget Pro"

	pending := testTestimonial("t2", "u1", base.Add(2*time.Minute))
	pending.Rating = 2

	otherTenant := testTestimonial("t3", "u2", base)

	deleted := testTestimonial("t4", "u1", base)
	deleted.IsActive = false

	for _, x := range []*models.Testimonial{approved, pending, otherTenant, deleted} {
		if err := s.CreateTestimonial(x); err != nil {
			t.Fatalf("CreateTestimonial(%s) error = %v, want nil", x.ID, err)
		}
	}

	tests := []struct {
		name    string
		filter  TestimonialFilter
		wantIDs []string
	}{
		{"no filter", TestimonialFilter{}, []string{"t2", "t1"}},
		{"status", TestimonialFilter{Status: "approved"}, []string{"t1"}},
		{"min rating", TestimonialFilter{MinRating: 4}, []string{"t1"}},
		{"search product", TestimonialFilter{Search: "widget"}, []string{"t1"}},
		{"search no match", TestimonialFilter{Search: "nonexistent"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.ListTestimonials("u1", tt.filter)
			if err != nil {
				t.Fatalf("ListTestimonials() error = %v, want nil", err)
			}
			if total != len(tt.wantIDs) {
				t.Errorf("ListTestimonials() total = %d, want %d", total, len(tt.wantIDs))
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("ListTestimonials() returned %d items, want %d", len(items), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if items[i].ID != id {
					t.Errorf("ListTestimonials() item %d = %v, want %v", i, items[i].ID, id)
				}
			}
		})
	}
}

func TestMemoryStore_ListTestimonials_Pagination(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()

	for i := 0; i < 5; i++ {
		x := testTestimonial(string(rune('a'+i)), "u1", base.Add(time.Duration(i)*time.Minute))
		if err := s.CreateTestimonial(x); err != nil {
			t.Fatalf("CreateTestimonial() error = %v, want nil", err)
		}
	}

	items, total, err := s.ListTestimonials("u1", TestimonialFilter{Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v, want nil", err)
	}
	if total != 5 {
		t.Errorf("ListTestimonials() total = %d, want 5", total)
	}
	if len(items) != 2 {
		t.Fatalf("ListTestimonials() returned %d items, want 2", len(items))
	}
	// Newest first: e d | c b | a
	if items[0].ID != "c" || items[1].ID != "b" {
		t.Errorf("ListTestimonials() page = [%s %s], want [c b]", items[0].ID, items[1].ID)
	}

	// Skip beyond the end yields an empty page, not an error
	items, total, err = s.ListTestimonials("u1", TestimonialFilter{Skip: 10, Limit: 2})
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v, want nil", err)
	}
	if total != 5 || len(items) != 0 {
		t.Errorf("ListTestimonials() past end = (%d items, total %d), want (0, 5)", len(items), total)
	}
}

func TestMemoryStore_ListTestimonials_TagAndCategory(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	s.CreateCategory(&models.Category{ID: "c1", Name: "SaaS", Slug: "saas", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})
	s.CreateTag(&models.Tag{ID: "g1", Name: "Fast", Slug: "fast", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})
	s.CreateTag(&models.Tag{ID: "g2", Name: "Cheap", Slug: "cheap", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})

	both := testTestimonial("t1", "u1", now.Add(time.Minute))
	both.CategoryID = "c1"
	both.TagIDs = []string{"g1", "g2"}

	oneTag := testTestimonial("t2", "u1", now)
	oneTag.TagIDs = []string{"g1"}

	for _, x := range []*models.Testimonial{both, oneTag} {
		if err := s.CreateTestimonial(x); err != nil {
			t.Fatalf("CreateTestimonial() error = %v, want nil", err)
		}
	}

	items, _, err := s.ListTestimonials("u1", TestimonialFilter{CategorySlug: "saas"})
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v, want nil", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Errorf("ListTestimonials(category) returned %d items, want [t1]", len(items))
	}

	// Every requested tag must match
	items, _, err = s.ListTestimonials("u1", TestimonialFilter{TagSlugs: []string{"fast", "cheap"}})
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v, want nil", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Errorf("ListTestimonials(tags) returned %d items, want [t1]", len(items))
	}

	// Unknown slug matches nothing
	items, total, err := s.ListTestimonials("u1", TestimonialFilter{CategorySlug: "missing"})
	if err != nil {
		t.Fatalf("ListTestimonials() error = %v, want nil", err)
	}
	if len(items) != 0 || total != 0 {
		t.Errorf("ListTestimonials(unknown category) = (%d, %d), want (0, 0)", len(items), total)
	}
}

func TestMemoryStore_Taxonomy(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	if err := s.CreateCategory(&models.Category{ID: "c1", Name: "SaaS", Slug: "saas", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateCategory() error = %v, want nil", err)
	}

	c, err := s.GetCategoryBySlug("u1", "saas")
	if err != nil {
		t.Fatalf("GetCategoryBySlug() error = %v, want nil", err)
	}
	if c.ID != "c1" {
		t.Errorf("GetCategoryBySlug() id = %v, want c1", c.ID)
	}

	// Slugs are tenant-scoped
	if _, err := s.GetCategoryBySlug("u2", "saas"); err != ErrNotFound {
		t.Errorf("GetCategoryBySlug() cross-tenant error = %v, want ErrNotFound", err)
	}

	// Duplicate slug within a tenant is rejected, same slug in another tenant is fine
	if err := s.CreateCategory(&models.Category{ID: "c2", Name: "SaaS", Slug: "saas", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}); err != ErrDuplicateSlug {
		t.Errorf("CreateCategory() duplicate slug error = %v, want ErrDuplicateSlug", err)
	}
	if err := s.CreateCategory(&models.Category{ID: "c3", Name: "SaaS", Slug: "saas", OwnerID: "u2", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Errorf("CreateCategory() other tenant error = %v, want nil", err)
	}

	if err := s.CreateTag(&models.Tag{ID: "g1", Name: "Fast", Slug: "fast", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateTag() error = %v, want nil", err)
	}

	tags, err := s.GetTagsByIDs([]string{"g1", "missing"})
	if err != nil {
		t.Fatalf("GetTagsByIDs() error = %v, want nil", err)
	}
	if len(tags) != 1 || tags[0].ID != "g1" {
		t.Errorf("GetTagsByIDs() returned %d tags, want [g1]", len(tags))
	}
}

func TestMemoryStore_Config(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.GetConfig("missing"); err != ErrNotFound {
		t.Errorf("GetConfig() missing error = %v, want ErrNotFound", err)
	}

	if err := s.SetConfig("key", "value"); err != nil {
		t.Fatalf("SetConfig() error = %v, want nil", err)
	}

	value, err := s.GetConfig("key")
	if err != nil {
		t.Fatalf("GetConfig() error = %v, want nil", err)
	}
	if value != "value" {
		t.Errorf("GetConfig() = %v, want value", value)
	}
}
