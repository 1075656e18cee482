package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/testifyhq/testify/auth"
	"github.com/testifyhq/testify/middleware"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/store"
)

// UserHandler handles tenant member management. All routes are admin-gated
// at the router.
type UserHandler struct {
	store store.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(st store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// CreateMemberRequest represents a request to add a member to the tenant
type CreateMemberRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Role     string `json:"role,omitempty"` // moderator or user, defaults to user
}

// UpdateUserRequest represents a partial update of a tenant member
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Surname  *string `json:"surname,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// memberRole validates a requested member role. The admin role is reserved
// for the tenant root.
func memberRole(raw string) (models.Role, bool) {
	if raw == "" {
		return models.RoleUser, true
	}
	role := models.Role(raw)
	if role == models.RoleModerator || role == models.RoleUser {
		return role, true
	}
	return "", false
}

// CreateMember handles adding a user to the admin's tenant
func (h *UserHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, ok := memberRole(req.Role)
	if !ok {
		respondError(w, http.StatusBadRequest, "role must be moderator or user")
		return
	}

	if err := models.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Surname:      req.Surname,
		Role:         role,
		OwnerID:      admin.TenantOwnerID(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateUser(user); err != nil {
		if err == store.ErrDuplicateEmail {
			respondError(w, http.StatusConflict, "email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// List handles listing all users of the admin's tenant
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	users, err := h.store.ListUsersByOwner(admin.TenantOwnerID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// Get handles fetching a single tenant user by id
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, ok := h.tenantUser(w, r, admin)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles a partial update of a tenant member. The tenant root
// cannot be modified through this endpoint.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, ok := h.tenantUser(w, r, admin)
	if !ok {
		return
	}

	if user.OwnerID == "" {
		respondError(w, http.StatusBadRequest, "cannot modify the tenant owner")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Surname != nil {
		user.Surname = *req.Surname
	}
	if req.Role != nil {
		role, ok := memberRole(*req.Role)
		if !ok {
			respondError(w, http.StatusBadRequest, "role must be moderator or user")
			return
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := user.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateUser(user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	// A demoted or deactivated member must not keep an old session alive
	if req.Role != nil || (req.IsActive != nil && !*req.IsActive) {
		h.store.RevokeAllUserTokens(user.ID)
	}

	respondJSON(w, http.StatusOK, user)
}

// Delete handles deactivating a tenant member. The record is kept; the
// account can no longer log in and its sessions are revoked.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, ok := h.tenantUser(w, r, admin)
	if !ok {
		return
	}

	if user.OwnerID == "" {
		respondError(w, http.StatusBadRequest, "cannot deactivate the tenant owner")
		return
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()

	if err := h.store.UpdateUser(user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to deactivate user")
		return
	}

	h.store.RevokeAllUserTokens(user.ID)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "user deactivated successfully",
	})
}

// tenantUser loads the user named in the URL, reporting a user outside the
// admin's tenant as not found
func (h *UserHandler) tenantUser(w http.ResponseWriter, r *http.Request, admin *models.User) (*models.User, bool) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing user id")
		return nil, false
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil || user.TenantOwnerID() != admin.TenantOwnerID() {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}

	return user, true
}

func (h *UserHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
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
