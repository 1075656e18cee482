package store

import "errors"

// ErrNotFound represents a not found error
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email that
// already exists
var ErrDuplicateEmail = errors.New("email already exists")

// ErrDuplicateSlug is returned when creating a category or tag whose slug
// already exists for the tenant
var ErrDuplicateSlug = errors.New("slug already exists")
