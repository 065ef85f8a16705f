package domain

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EmailVerification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	Code      string     `db:"code" json:"-"`
	UserName  string     `db:"user_name" json:"user_name"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	IsUsed    bool       `db:"is_used" json:"is_used"`
	UsedAt    *time.Time `db:"used_at" json:"used_at"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Redeemable reports whether code unlocks this record at now.
func (v *EmailVerification) Redeemable(code string, now time.Time) bool {
	if v.IsUsed || !v.ExpiresAt.After(now) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) == 1
}
