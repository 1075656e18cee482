package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/testifyhq/testify/auth"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/store"
)

func newAuthHandler(st store.Store) (*AuthHandler, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthHandler(st, jwtService), jwtService
}

func doRegister(t *testing.T, handler *AuthHandler, email, password string) AuthResponse {
	t.Helper()
	body, _ := json.Marshal(RegisterRequest{Email: email, Password: password, Name: "Test"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register() status = %v, want %v: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Register() invalid JSON: %v", err)
	}
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	st := store.NewMemoryStore()
	handler, jwtService := newAuthHandler(st)

	resp := doRegister(t, handler, "a@example.com", "password123")

	if resp.User.Role != models.RoleAdmin {
		t.Errorf("Register() role = %v, want admin", resp.User.Role)
	}
	if resp.User.OwnerID != "" {
		t.Errorf("Register() owner_id = %v, want empty (tenant root)", resp.User.OwnerID)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Register() missing tokens")
	}

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v, want nil", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("access token user = %v, want %v", claims.UserID, resp.User.ID)
	}

	// Password hash never leaves the server
	if resp.User.PasswordHash != "" {
		t.Error("Register() leaked password hash")
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	doRegister(t, handler, "a@example.com", "password123")

	body, _ := json.Marshal(RegisterRequest{Email: "a@example.com", Password: "password456"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("Register() duplicate status = %v, want %v", rr.Code, http.StatusConflict)
	}
}

func TestAuthHandler_Register_WeakPassword(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	body, _ := json.Marshal(RegisterRequest{Email: "a@example.com", Password: "short"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register() weak password status = %v, want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	doRegister(t, handler, "a@example.com", "password123")

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"valid", "a@example.com", "password123", http.StatusOK},
		{"wrong password", "a@example.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "b@example.com", "password123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(LoginRequest{Email: tt.email, Password: tt.password})
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			handler.Login(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Login() status = %v, want %v", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthHandler_Refresh_Rotation(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	registered := doRegister(t, handler, "a@example.com", "password123")

	body, _ := json.Marshal(RefreshRequest{RefreshToken: registered.RefreshToken})
	req := httptest.NewRequest("POST", "/api/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Refresh() status = %v, want %v: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var refreshed AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("Refresh() invalid JSON: %v", err)
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Error("Refresh() did not rotate the refresh token")
	}

	// The old token is spent
	body, _ = json.Marshal(RefreshRequest{RefreshToken: registered.RefreshToken})
	req = httptest.NewRequest("POST", "/api/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Refresh() reused token status = %v, want %v", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_RefreshTokenStoredAsDigest(t *testing.T) {
	st := store.NewMemoryStore()
	handler, jwtService := newAuthHandler(st)

	resp := doRegister(t, handler, "a@example.com", "password123")

	// Refresh JWTs are far longer than bcrypt's 72-byte input limit;
	// issuing must not fail on token length
	if len(resp.RefreshToken) <= 72 {
		t.Fatalf("refresh token len = %d, want > 72", len(resp.RefreshToken))
	}

	claims, err := jwtService.ValidateRefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v, want nil", err)
	}

	rt, err := st.GetRefreshTokenByID(claims.TokenID)
	if err != nil {
		t.Fatalf("GetRefreshTokenByID() error = %v, want nil", err)
	}
	if rt.TokenHash == resp.RefreshToken {
		t.Error("refresh token stored in the clear")
	}
	if len(rt.TokenHash) != 64 {
		t.Errorf("stored token hash len = %d, want 64 hex chars", len(rt.TokenHash))
	}
	if !auth.VerifyTokenHash(resp.RefreshToken, rt.TokenHash) {
		t.Error("stored hash does not verify against the issued token")
	}
}

func TestAuthHandler_Refresh_Garbage(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	body, _ := json.Marshal(RefreshRequest{RefreshToken: "not-a-token"})
	req := httptest.NewRequest("POST", "/api/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Refresh() garbage token status = %v, want %v", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	registered := doRegister(t, handler, "a@example.com", "password123")

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req = withUserContext(req, registered.User)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Logout() status = %v, want %v", rr.Code, http.StatusOK)
	}

	// Refresh tokens are dead after logout
	body, _ := json.Marshal(RefreshRequest{RefreshToken: registered.RefreshToken})
	req = httptest.NewRequest("POST", "/api/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Refresh() after logout status = %v, want %v", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	st := store.NewMemoryStore()
	handler, _ := newAuthHandler(st)

	registered := doRegister(t, handler, "a@example.com", "password123")

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req = withUserContext(req, registered.User)
	rr := httptest.NewRecorder()
	handler.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Me() status = %v, want %v", rr.Code, http.StatusOK)
	}

	var user models.User
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatalf("Me() invalid JSON: %v", err)
	}
	if user.Email != "a@example.com" {
		t.Errorf("Me() email = %v, want a@example.com", user.Email)
	}
}
