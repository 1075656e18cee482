package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/testifyhq/testify/apikeys"
	"github.com/testifyhq/testify/middleware"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/store"
)

// APIKeyHandler handles API key management endpoints
type APIKeyHandler struct {
	store store.Store
	keys  *apikeys.Service
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(st store.Store, keys *apikeys.Service) *APIKeyHandler {
	return &APIKeyHandler{
		store: st,
		keys:  keys,
	}
}

// CreateAPIKeyRequest represents a request to create an API key
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKeyResponse represents the response when creating an API key.
// The raw key is only returned once at creation time.
type CreateAPIKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"` // Raw key, only shown once
	CreatedAt string `json:"created_at"`
}

// APIKeyInfo represents API key information (without the secret)
type APIKeyInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prefix    string    `json:"prefix"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Create handles API key creation
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) > 50 {
		respondError(w, http.StatusBadRequest, "name must be <= 50 characters")
		return
	}

	issued, err := h.keys.Issue(user.TenantOwnerID(), req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create API key")
		return
	}

	respondJSON(w, http.StatusCreated, CreateAPIKeyResponse{
		ID:        issued.ID,
		Name:      issued.Name,
		Key:       issued.RawSecret,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// List handles listing active API keys for the current tenant
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	keys, err := h.keys.ListActive(user.TenantOwnerID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list API keys")
		return
	}

	result := make([]APIKeyInfo, 0, len(keys))
	for _, key := range keys {
		result = append(result, APIKeyInfo{
			ID:        key.ID,
			Name:      key.Name,
			Prefix:    key.Prefix,
			Revoked:   key.Revoked,
			CreatedAt: key.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"api_keys": result,
	})
}

// Revoke handles revoking an API key. A key belonging to another tenant
// is reported as not found.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	keyID := chi.URLParam(r, "id")
	if keyID == "" {
		respondError(w, http.StatusBadRequest, "missing key id")
		return
	}

	if err := h.keys.Revoke(keyID, user.TenantOwnerID()); err != nil {
		if errors.Is(err, apikeys.ErrNotFound) {
			respondError(w, http.StatusNotFound, "API key not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to revoke API key")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "API key revoked successfully",
	})
}

// currentUser loads the authenticated user's full record, writing an error
// response on failure
func (h *APIKeyHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
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
