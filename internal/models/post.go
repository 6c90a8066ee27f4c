package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID             uuid.UUID   `json:"id"`
	AuthorID       uuid.UUID   `json:"authorId"` // Immutable after creation
	AuthorUsername string      `json:"authorUsername,omitempty"`
	AuthorPicture  string      `json:"authorPicture,omitempty"`
	Title          string      `json:"title"`
	Content        string      `json:"content"` // Sanitized HTML
	Image          string      `json:"image,omitempty"`
	Tags           []string    `json:"tags"`
	Upvotes        []uuid.UUID `json:"upvotes"`
	Downvotes      []uuid.UUID `json:"downvotes"`
	Comments       []uuid.UUID `json:"comments"` // Top-level comments only
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// UpvoteCount derives the score from the voter list, never stored.
func (p *Post) UpvoteCount() int {
	return len(p.Upvotes)
}

func (p *Post) DownvoteCount() int {
	return len(p.Downvotes)
}

func (p *Post) CommentCount() int {
	return len(p.Comments)
}

// HasUpvoted reports membership of userID in the post's upvoter list.
func (p *Post) HasUpvoted(userID uuid.UUID) bool {
	return containsID(p.Upvotes, userID)
}

func (p *Post) HasDownvoted(userID uuid.UUID) bool {
	return containsID(p.Downvotes, userID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
