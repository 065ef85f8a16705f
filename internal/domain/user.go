package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleBoardingFinder Role = "boarding_finder"
	RoleBoardingOwner  Role = "boarding_owner"
	RoleAdmin          Role = "admin"
)

// ParseRole normalizes a stored role. Older rows only carry user_type, so it
// is consulted when role is empty. Anything unknown becomes boarding_finder.
func ParseRole(role string, legacyUserType string) Role {
	value := strings.ToLower(strings.TrimSpace(role))
	if value == "" {
		value = strings.ToLower(strings.TrimSpace(legacyUserType))
	}

	switch Role(value) {
	case RoleBoardingOwner, RoleAdmin:
		return Role(value)
	default:
		return RoleBoardingFinder
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleBoardingFinder, RoleBoardingOwner, RoleAdmin:
		return true
	}
	return false
}

// SignupAllowed reports whether the role may be picked by the user at signup.
func (r Role) SignupAllowed() bool {
	return r == RoleBoardingFinder || r == RoleBoardingOwner
}

func (r Role) CanOwnListings() bool {
	return r == RoleBoardingOwner || r == RoleAdmin
}

// StringList is a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}

	return json.Unmarshal(bytes, l)
}

type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	FullName       string     `db:"full_name" json:"full_name"`
	Email          string     `db:"email" json:"email"`
	Role           Role       `db:"role" json:"role"`
	LegacyUserType *string    `db:"user_type" json:"-"`
	ProfileImage   *string    `db:"profile_image" json:"profile_image,omitempty"`
	IDDocuments    StringList `db:"id_documents" json:"id_documents"`
	IsVerified     bool       `db:"is_verified" json:"is_verified"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizeRole applies ParseRole in place. Repositories call it on every
// row they read so the rest of the code only sees the closed enum.
func (u *User) NormalizeRole() {
	var legacy string
	if u.LegacyUserType != nil {
		legacy = *u.LegacyUserType
	}
	u.Role = ParseRole(string(u.Role), legacy)
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
}

// AdminUserUpdate is what an admin may change on any account.
type AdminUserUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
	Role      *Role   `json:"role" validate:"omitempty,role"`
	IsActive  *bool   `json:"is_active"`
}

type UserStats struct {
	Total  int64          `json:"total"`
	ByRole map[Role]int64 `json:"by_role"`
}

// UserDeletionReport records which steps of an account deletion succeeded.
type UserDeletionReport struct {
	UserDocument  bool     `json:"userDocument"`
	ProfileImages bool     `json:"profileImages"`
	IDDocuments   bool     `json:"idDocuments"`
	UserPosts     bool     `json:"userPosts"`
	AuthAccount   bool     `json:"authAccount"`
	Errors        []string `json:"errors"`
}
