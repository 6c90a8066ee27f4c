package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultProfilePicture = "/images/default-avatar.jpg"

type User struct {
	ID              uuid.UUID   `json:"id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	HashedPassword  string      `json:"-"`
	ProfilePicture  string      `json:"profilePicture,omitempty"`
	Country         string      `json:"country,omitempty"`
	AboutMe         string      `json:"aboutMe,omitempty"`
	SavedTags       []string    `json:"savedTags"`
	Posts           []uuid.UUID `json:"posts"`
	Comments        []uuid.UUID `json:"comments"`
	Friends         []uuid.UUID `json:"friends"`
	BookmarkedPosts []uuid.UUID `json:"bookmarkedPosts"`
	// Maintained by independent $inc operations; may drift from len(Posts).
	PostCount    int       `json:"postCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePictureURL derives the avatar URL, never stored redundantly.
func (u *User) ProfilePictureURL() string {
	if u.ProfilePicture == "" {
		return DefaultProfilePicture
	}
	return u.ProfilePicture
}

// NumberOfPosts derives the owned-post count from the reference list,
// unlike PostCount which is incrementally maintained and can drift.
func (u *User) NumberOfPosts() int {
	return len(u.Posts)
}

func (u *User) HasBookmarked(postID uuid.UUID) bool {
	for _, id := range u.BookmarkedPosts {
		if id == postID {
			return true
		}
	}
	return false
}
