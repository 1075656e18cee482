package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/testifyhq/testify/email"
	"github.com/testifyhq/testify/internal"
	"github.com/testifyhq/testify/middleware"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/notifier"
	"github.com/testifyhq/testify/store"
)

// TestimonialHandler handles testimonial endpoints
type TestimonialHandler struct {
	store        store.Store
	notifier     *notifier.NotificationManager
	emailService *email.EmailService
}

// NewTestimonialHandler creates a new testimonial handler
func NewTestimonialHandler(st store.Store, nm *notifier.NotificationManager, es *email.EmailService) *TestimonialHandler {
	return &TestimonialHandler{
		store:        st,
		notifier:     nm,
		emailService: es,
	}
}

// ListResponse is the paginated envelope for testimonial listings
type ListResponse struct {
	Items []*models.Testimonial `json:"items"`
	Total int                   `json:"total"`
	Skip  int                   `json:"skip"`
	Limit int                   `json:"limit"`
}

// UpdateTestimonialRequest represents a partial testimonial update
type UpdateTestimonialRequest struct {
	ProductID   *string   `json:"product_id,omitempty"`
	ProductName *string   `json:"product_name,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	AuthorName  *string   `json:"author_name,omitempty"`
	YoutubeURL  *string   `json:"youtube_url,omitempty"`
	ImageURLs   *[]string `json:"image_urls,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// UpdateStatusRequest represents a moderation decision
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Submit handles public testimonial submission through an API key.
// New testimonials always start out pending moderation.
func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	key, ok := middleware.GetAPIKeyFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing api key")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	sub, err := internal.ParseSubmission(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryID, err := h.resolveCategory(key.OwnerID, sub.Category)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve category")
		return
	}

	tagIDs, err := h.resolveTags(key.OwnerID, sub.Tags)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve tags")
		return
	}

	now := time.Now()
	t := &models.Testimonial{
		ID:          uuid.New().String(),
		ProductID:   sub.ProductID,
		ProductName: sub.ProductName,
		Title:       sub.Title,
		Content:     sub.Content,
		Rating:      sub.Rating,
		AuthorName:  sub.AuthorName,
		YoutubeURL:  sub.YoutubeURL,
		ImageURLs:   sub.ImageURLs,
		Status:      models.StatusPending,
		OwnerID:     key.OwnerID,
		CategoryID:  categoryID,
		TagIDs:      tagIDs,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateTestimonial(t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create testimonial")
		return
	}

	h.notifySubmission(r, t)

	respondJSON(w, http.StatusCreated, t)
}

// notifySubmission fires the webhook and owner email for a new submission.
// Delivery failures never fail the submission itself.
func (h *TestimonialHandler) notifySubmission(r *http.Request, t *models.Testimonial) {
	if h.notifier != nil {
		h.notifier.Notify(r.Context(), &notifier.NotificationData{
			TestimonialID: t.ID,
			Title:         t.Title,
			ProductName:   t.ProductName,
			AuthorName:    t.AuthorName,
			Rating:        t.Rating,
			Status:        string(t.Status),
			SubmittedAt:   t.CreatedAt,
		})
	}

	if h.emailService != nil && h.emailService.Enabled() {
		if owner, err := h.store.GetUserByID(t.OwnerID); err == nil {
			go h.emailService.SendPendingReviewEmail(owner.Email, t.Title, t.ProductName)
		}
	}
}

// List handles listing the tenant's testimonials with filters and pagination
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	filter := store.TestimonialFilter{
		Search:       q.Get("search"),
		Status:       q.Get("status"),
		CategorySlug: q.Get("category"),
		Skip:         parseIntParam(q.Get("skip"), 0),
		Limit:        parseIntParam(q.Get("limit"), store.DefaultPageSize),
	}

	if filter.Status != "" && !models.Status(filter.Status).Valid() {
		respondError(w, http.StatusBadRequest, "status must be one of: pending, approved, rejected")
		return
	}

	if minRating := q.Get("min_rating"); minRating != "" {
		filter.MinRating = parseIntParam(minRating, 0)
	}

	if tags := q.Get("tags"); tags != "" {
		for _, slug := range strings.Split(tags, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				filter.TagSlugs = append(filter.TagSlugs, slug)
			}
		}
	}

	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = store.DefaultPageSize
	}

	items, total, err := h.store.ListTestimonials(user.TenantOwnerID(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list testimonials")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Items: items,
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	})
}

// Get handles fetching a single testimonial
func (h *TestimonialHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	t, ok := h.tenantTestimonial(w, r, user)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// Update handles partial testimonial updates
func (h *TestimonialHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	t, ok := h.tenantTestimonial(w, r, user)
	if !ok {
		return
	}

	var req UpdateTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID != nil {
		t.ProductID = *req.ProductID
	}
	if req.ProductName != nil {
		t.ProductName = *req.ProductName
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.Rating != nil {
		t.Rating = *req.Rating
	}
	if req.AuthorName != nil {
		t.AuthorName = *req.AuthorName
	}
	if req.YoutubeURL != nil {
		t.YoutubeURL = *req.YoutubeURL
	}
	if req.ImageURLs != nil {
		t.ImageURLs = *req.ImageURLs
	}
	if req.Category != nil {
		categoryID, err := h.resolveCategory(t.OwnerID, *req.Category)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to resolve category")
			return
		}
		t.CategoryID = categoryID
	}
	if req.Tags != nil {
		tagIDs, err := h.resolveTags(t.OwnerID, *req.Tags)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to resolve tags")
			return
		}
		t.TagIDs = tagIDs
	}

	t.UpdatedAt = time.Now()

	if err := t.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateTestimonial(t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update testimonial")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// UpdateStatus handles moderation decisions
func (h *TestimonialHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	t, ok := h.tenantTestimonial(w, r, user)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := models.Status(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "status must be one of: pending, approved, rejected")
		return
	}

	t.Status = status
	t.UpdatedAt = time.Now()

	if err := h.store.UpdateTestimonial(t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update testimonial")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// Delete handles soft-deleting a testimonial. The record stays in the
// store but drops out of every listing.
func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	t, ok := h.tenantTestimonial(w, r, user)
	if !ok {
		return
	}

	now := time.Now()
	t.IsActive = false
	t.DeletedAt = &now
	t.UpdatedAt = now

	if err := h.store.UpdateTestimonial(t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete testimonial")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "testimonial deleted successfully",
	})
}

// tenantTestimonial loads the testimonial in the URL and checks it belongs
// to the user's tenant. Records outside the tenant and soft-deleted records
// are reported as not found.
func (h *TestimonialHandler) tenantTestimonial(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Testimonial, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing testimonial id")
		return nil, false
	}

	t, err := h.store.GetTestimonial(id)
	if err != nil {
		if err == store.ErrNotFound {
			respondError(w, http.StatusNotFound, "testimonial not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to get testimonial")
		return nil, false
	}

	if t.OwnerID != user.TenantOwnerID() || !t.IsActive {
		respondError(w, http.StatusNotFound, "testimonial not found")
		return nil, false
	}

	return t, true
}

// resolveCategory returns the category ID for a display name, creating the
// category if the tenant has no category with that slug yet
func (h *TestimonialHandler) resolveCategory(ownerID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}

	slug := internal.Slugify(name)
	if slug == "" {
		return "", nil
	}

	category, err := h.store.GetCategoryBySlug(ownerID, slug)
	if err == nil {
		return category.ID, nil
	}
	if err != store.ErrNotFound {
		return "", err
	}

	now := time.Now()
	category = &models.Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateCategory(category); err != nil {
		if err == store.ErrDuplicateSlug {
			// Lost a create race, the winner's row is what we want
			if existing, getErr := h.store.GetCategoryBySlug(ownerID, slug); getErr == nil {
				return existing.ID, nil
			}
		}
		return "", err
	}
	return category.ID, nil
}

// resolveTags maps display names to tag IDs, creating missing tags
func (h *TestimonialHandler) resolveTags(ownerID string, names []string) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)

	for _, name := range names {
		slug := internal.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := h.store.GetTagBySlug(ownerID, slug)
		if err == nil {
			ids = append(ids, tag.ID)
			continue
		}
		if err != store.ErrNotFound {
			return nil, err
		}

		now := time.Now()
		tag = &models.Tag{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(name),
			Slug:      slug,
			OwnerID:   ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.store.CreateTag(tag); err != nil {
			if err == store.ErrDuplicateSlug {
				if existing, getErr := h.store.GetTagBySlug(ownerID, slug); getErr == nil {
					ids = append(ids, existing.ID)
					continue
				}
			}
			return nil, err
		}
		ids = append(ids, tag.ID)
	}

	return ids, nil
}

func (h *TestimonialHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
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

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
