package models

import "time"

// User is the users table row.
type User struct {
	UserID       string     `db:"user_id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	BaseCurrency string     `db:"base_currency"`
	DeletedAt    *time.Time `db:"deleted_at"`
	AuditFields
}
