package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthIdentity holds login credentials. Its id is the subject id shared
// with the user profile.
type AuthIdentity struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
