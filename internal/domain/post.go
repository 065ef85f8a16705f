package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusDeclined PostStatus = "declined"
	// PostStatusActive is the legacy value of posts inserted before moderation existed.
	PostStatusActive PostStatus = "active"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusDeclined, PostStatusActive:
		return true
	}
	return false
}

type Category string

const (
	CategoryBoardingHouses Category = "Boarding Houses"
	CategoryApartment      Category = "Apartment"
	CategoryHouse          Category = "House"
)

var Categories = []Category{CategoryBoardingHouses, CategoryApartment, CategoryHouse}

type ForWhom string

const (
	ForWhomStudents      ForWhom = "Students"
	ForWhomFamilies      ForWhom = "Families"
	ForWhomProfessionals ForWhom = "Professionals"
)

var ForWhoms = []ForWhom{ForWhomStudents, ForWhomFamilies, ForWhomProfessionals}

var Districts = []string{
	"Colombo",
	"Kandy",
	"Galle",
	"Gampaha",
	"Kalutara",
	"Matale",
	"Nuwara Eliya",
	"Matara",
	"Hambantota",
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

func IsForWhom(s string) bool {
	for _, f := range ForWhoms {
		if string(f) == s {
			return true
		}
	}
	return false
}

func IsDistrict(s string) bool {
	for _, d := range Districts {
		if d == s {
			return true
		}
	}
	return false
}

// PostContent is the owner-editable part of a post.
type PostContent struct {
	Title       string   `json:"title" validate:"required,min=10,max=100"`
	Category    Category `json:"category" validate:"required,category"`
	ForWhom     ForWhom  `json:"for_whom" validate:"omitempty,forwhom"`
	Location    string   `json:"location" validate:"required,district"`
	Description string   `json:"description" validate:"required,min=20,max=500"`
	Rent        float64  `json:"rent" validate:"gt=0,lte=1000000"`
	Email       string   `json:"email" validate:"required,email"`
	Mobile      string   `json:"mobile" validate:"required,mobile"`
}

func (c PostContent) Normalize() PostContent {
	c.Title = strings.TrimSpace(c.Title)
	c.Location = strings.TrimSpace(c.Location)
	c.Description = strings.TrimSpace(c.Description)
	c.Email = strings.TrimSpace(c.Email)
	c.Mobile = strings.TrimSpace(c.Mobile)
	return c
}

// PostUpdate is a partial content edit. Nil fields keep the current value.
type PostUpdate struct {
	Title       *string   `json:"title"`
	Category    *Category `json:"category"`
	ForWhom     *ForWhom  `json:"for_whom"`
	Location    *string   `json:"location"`
	Description *string   `json:"description"`
	Rent        *float64  `json:"rent"`
	Email       *string   `json:"email"`
	Mobile      *string   `json:"mobile"`
}

func (u PostUpdate) Apply(c PostContent) PostContent {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.ForWhom != nil {
		c.ForWhom = *u.ForWhom
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Rent != nil {
		c.Rent = *u.Rent
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Mobile != nil {
		c.Mobile = *u.Mobile
	}
	return c.Normalize()
}

type Post struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Category    Category   `db:"category" json:"category"`
	ForWhom     ForWhom    `db:"for_whom" json:"for_whom"`
	Location    string     `db:"location" json:"location"`
	Description string     `db:"description" json:"description"`
	Rent        float64    `db:"rent" json:"rent"`
	Email       string     `db:"email" json:"email"`
	Mobile      string     `db:"mobile" json:"mobile"`
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`
	OwnerName   string     `db:"owner_name" json:"owner_name"`
	Images      StringList `db:"images" json:"images"`

	Status        PostStatus `db:"status" json:"status"`
	IsEdited      bool       `db:"is_edited" json:"is_edited"`
	EditedAt      *time.Time `db:"edited_at" json:"edited_at"`
	DeclineReason *string    `db:"decline_reason" json:"decline_reason"`
	DeclinedAt    *time.Time `db:"declined_at" json:"declined_at"`
	ResubmittedAt *time.Time `db:"resubmitted_at" json:"resubmitted_at"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewPost builds a post awaiting review. Owner fields come from the session.
func NewPost(id uuid.UUID, owner Session, content PostContent, now time.Time) *Post {
	p := &Post{
		ID:        id,
		OwnerID:   owner.UserID,
		OwnerName: owner.Name,
		Images:    StringList{},
		Status:    PostStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.setContent(content)
	return p
}

func (p *Post) Content() PostContent {
	return PostContent{
		Title:       p.Title,
		Category:    p.Category,
		ForWhom:     p.ForWhom,
		Location:    p.Location,
		Description: p.Description,
		Rent:        p.Rent,
		Email:       p.Email,
		Mobile:      p.Mobile,
	}
}

func (p *Post) setContent(c PostContent) {
	p.Title = c.Title
	p.Category = c.Category
	p.ForWhom = c.ForWhom
	p.Location = c.Location
	p.Description = c.Description
	p.Rent = c.Rent
	p.Email = c.Email
	p.Mobile = c.Mobile
}

func invalidTransition(from PostStatus, action string) *Error {
	return NewValidationError(fmt.Sprintf("cannot %s a post in status %q", action, from))
}

func (p *Post) Approve(now time.Time) error {
	if p.Status != PostStatusPending {
		return invalidTransition(p.Status, "approve")
	}

	p.Status = PostStatusApproved
	p.IsEdited = false
	p.EditedAt = nil
	p.UpdatedAt = now

	return nil
}

// Decline requires a non-blank reason. The post is left untouched on error.
func (p *Post) Decline(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("decline reason is required")
	}

	if p.Status != PostStatusPending {
		return invalidTransition(p.Status, "decline")
	}

	declinedAt := now
	p.Status = PostStatusDeclined
	p.DeclineReason = &reason
	p.DeclinedAt = &declinedAt
	p.UpdatedAt = now

	return nil
}

// ApplyEdit replaces the content and sends approved or declined posts back
// to review.
func (p *Post) ApplyEdit(content PostContent, now time.Time) {
	p.setContent(content)
	p.markEdited(now)
}

func (p *Post) AttachImages(urls []string, now time.Time) {
	p.Images = append(p.Images, urls...)
	p.markEdited(now)
}

func (p *Post) markEdited(now time.Time) {
	editedAt := now

	switch p.Status {
	case PostStatusApproved:
		p.Status = PostStatusPending
		p.IsEdited = true
		p.EditedAt = &editedAt
	case PostStatusDeclined:
		resubmittedAt := now
		p.Status = PostStatusPending
		p.IsEdited = true
		p.EditedAt = &editedAt
		p.DeclineReason = nil
		p.DeclinedAt = nil
		p.ResubmittedAt = &resubmittedAt
	}

	p.UpdatedAt = now
}

// MergeReviewQueue unions the plain pending and the edited result sets.
// Ids are unique in the output; an edited record replaces a plain one with
// the same id but keeps the position where the id was first seen.
func MergeReviewQueue(pending []Post, edited []Post) []Post {
	index := make(map[uuid.UUID]int, len(pending)+len(edited))
	out := make([]Post, 0, len(pending)+len(edited))

	for _, p := range pending {
		if _, ok := index[p.ID]; ok {
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}

	for _, p := range edited {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}

	return out
}

type PostStats struct {
	Total      int64                `json:"total"`
	ByStatus   map[PostStatus]int64 `json:"by_status"`
	ByCategory map[Category]int64   `json:"by_category"`
}

// PostDeletionReport lists the image cleanup failures of a post deletion.
type PostDeletionReport struct {
	PostID        uuid.UUID `json:"post_id"`
	PostDeleted   bool      `json:"post_deleted"`
	ImagesDeleted int       `json:"images_deleted"`
	Errors        []string  `json:"errors"`
}
