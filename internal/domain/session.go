package domain

import "github.com/google/uuid"

// Session is the authenticated caller. The HTTP layer builds it once per
// request and passes it to every service call that needs identity or role.
type Session struct {
	UserID uuid.UUID
	Role   Role
	Name   string
	Email  string
}

func NewSession(user *User) Session {
	return Session{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.DisplayName(),
		Email:  user.Email,
	}
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) CanOwnListings() bool {
	return s.Role.CanOwnListings()
}

// CanManage reports whether the caller may edit or delete the post.
func (s Session) CanManage(post *Post) bool {
	return s.IsAdmin() || post.OwnerID == s.UserID
}
