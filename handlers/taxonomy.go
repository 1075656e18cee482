package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/testifyhq/testify/internal"
	"github.com/testifyhq/testify/middleware"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/store"
)

// TaxonomyHandler handles category and tag endpoints
type TaxonomyHandler struct {
	store store.Store
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(st store.Store) *TaxonomyHandler {
	return &TaxonomyHandler{store: st}
}

// CreateNameRequest represents a request to create a category or tag
type CreateNameRequest struct {
	Name string `json:"name"`
}

// ListCategories handles listing the tenant's categories
func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategories(user.TenantOwnerID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// CreateCategory handles category creation. Creating a category whose slug
// already exists returns the existing record.
func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	name, slug, ok := h.parseName(w, r)
	if !ok {
		return
	}

	ownerID := user.TenantOwnerID()

	if existing, err := h.store.GetCategoryBySlug(ownerID, slug); err == nil {
		respondJSON(w, http.StatusOK, existing)
		return
	} else if err != store.ErrNotFound {
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	now := time.Now()
	category := &models.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := category.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateCategory(category); err != nil {
		if err == store.ErrDuplicateSlug {
			if existing, getErr := h.store.GetCategoryBySlug(ownerID, slug); getErr == nil {
				respondJSON(w, http.StatusOK, existing)
				return
			}
		}
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// ListTags handles listing the tenant's tags
func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	tags, err := h.store.ListTags(user.TenantOwnerID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tags": tags,
	})
}

// CreateTag handles tag creation. Creating a tag whose slug already exists
// returns the existing record.
func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	name, slug, ok := h.parseName(w, r)
	if !ok {
		return
	}

	ownerID := user.TenantOwnerID()

	if existing, err := h.store.GetTagBySlug(ownerID, slug); err == nil {
		respondJSON(w, http.StatusOK, existing)
		return
	} else if err != store.ErrNotFound {
		respondError(w, http.StatusInternalServerError, "failed to create tag")
		return
	}

	now := time.Now()
	tag := &models.Tag{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tag.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateTag(tag); err != nil {
		if err == store.ErrDuplicateSlug {
			if existing, getErr := h.store.GetTagBySlug(ownerID, slug); getErr == nil {
				respondJSON(w, http.StatusOK, existing)
				return
			}
		}
		respondError(w, http.StatusInternalServerError, "failed to create tag")
		return
	}

	respondJSON(w, http.StatusCreated, tag)
}

func (h *TaxonomyHandler) parseName(w http.ResponseWriter, r *http.Request) (name, slug string, ok bool) {
	var req CreateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return "", "", false
	}

	name = strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return "", "", false
	}
	if len(name) > 100 {
		respondError(w, http.StatusBadRequest, "name must be <= 100 characters")
		return "", "", false
	}

	slug = internal.Slugify(name)
	if slug == "" {
		respondError(w, http.StatusBadRequest, "name must contain letters or digits")
		return "", "", false
	}

	return name, slug, true
}

func (h *TaxonomyHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}

	user, err := h.store.GetUserByID(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "user not found")
		return nil, false
	}

	return user, true
}
