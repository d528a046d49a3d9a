package models

import (
	"database/sql"
	"time"
)

// User represents a user of the application.
type User struct {
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   sql.NullString `db:"password_hash"` // NULL for OAuth-only users
	AuthProvider   string         `db:"auth_provider"`
	ProviderUserID sql.NullString `db:"provider_user_id"`
	IsActive       bool           `db:"is_active"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"` // Used for soft delete
}
