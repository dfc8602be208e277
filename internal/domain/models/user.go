package models

import (
	"time"

	"helpdesk/internal/domain"
)

// User is a row of the users table. Password holds the bcrypt hash.
type User struct {
	ID        int64             `db:"id" json:"id"`
	FirstName string            `db:"first_name" json:"first_name"`
	LastName  string            `db:"last_name" json:"last_name"`
	Email     string            `db:"email" json:"email"`
	Password  string            `db:"password" json:"-"`
	Role      domain.Role       `db:"role" json:"role"`
	Status    domain.UserStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time        `db:"deleted_at" json:"-"`
}

// Summary trims a user down to what is embedded in other payloads.
func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserSummary is the eager-loaded form of a user association.
type UserSummary struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}
