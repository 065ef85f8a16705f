package domain

import (
	"time"

	"github.com/google/uuid"
)

type PasswordReset struct {
	ID         uuid.UUID  `db:"id"`
	IdentityID uuid.UUID  `db:"identity_id"`
	Token      string     `db:"token"`
	ExpiresAt  time.Time  `db:"expires_at"`
	UsedAt     *time.Time `db:"used_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && r.ExpiresAt.After(now)
}
