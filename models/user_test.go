package models

import (
	"strings"
	"testing"
	"time"
)

func validTestUser() *User {
	now := time.Now()
	return &User{
		ID:           "user-1",
		Email:        "a@example.com",
		PasswordHash: "hash",
		Role:         RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*User)
		wantErr bool
	}{
		{"valid", func(u *User) {}, false},
		{"missing id", func(u *User) { u.ID = "" }, true},
		{"missing email", func(u *User) { u.Email = "" }, true},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, true},
		{"missing password hash", func(u *User) { u.PasswordHash = "" }, true},
		{"bad role", func(u *User) { u.Role = "superuser" }, true},
		{"moderator role", func(u *User) { u.Role = RoleModerator }, false},
		{"name too long", func(u *User) { u.Name = strings.Repeat("a", 201) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validTestUser()
			tt.modify(u)
			err := u.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_TenantOwnerID(t *testing.T) {
	root := validTestUser()
	if got := root.TenantOwnerID(); got != root.ID {
		t.Errorf("TenantOwnerID() root = %v, want %v", got, root.ID)
	}

	member := validTestUser()
	member.ID = "member-1"
	member.OwnerID = "root-1"
	if got := member.TenantOwnerID(); got != "root-1" {
		t.Errorf("TenantOwnerID() member = %v, want root-1", got)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("ValidatePassword() short password error = nil, want error")
	}
	if err := ValidatePassword("long-enough"); err != nil {
		t.Errorf("ValidatePassword() error = %v, want nil", err)
	}
}

func TestRole_Valid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleModerator, RoleUser} {
		if !role.Valid() {
			t.Errorf("Role(%v).Valid() = false, want true", role)
		}
	}
	if Role("root").Valid() {
		t.Error("Role(root).Valid() = true, want false")
	}
}
