// internal/domain/user/entity.go
package user

import (
	"database/sql"
	"time"
)

// User represents an account. PasswordHash is absent for federation-only
// accounts; GoogleID is absent for password accounts.
type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash sql.NullString `json:"-" db:"password_hash"`
	GoogleID     sql.NullString `json:"-" db:"google_id"`
	Name         sql.NullString `json:"name" db:"name"`
	Picture      sql.NullString `json:"picture" db:"picture"`
	LoginsCount  int            `json:"logins_count" db:"logins_count"`
	LastLogin    sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Info is the public projection returned by auth endpoints.
func (u *User) Info() Info {
	return Info{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name.String,
		Picture: u.Picture.String,
	}
}

// Info is the minimal user shape exposed to clients.
type Info struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}
