package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on a post or a reply to another comment.
// ParentID is nil for top-level comments; Replies holds direct children.
type Comment struct {
	ID             uuid.UUID   `json:"id"`
	PostID         uuid.UUID   `json:"postId"`
	AuthorID       uuid.UUID   `json:"authorId"`
	AuthorUsername string      `json:"authorUsername,omitempty"`
	AuthorPicture  string      `json:"authorPicture,omitempty"`
	Content        string      `json:"content"` // Sanitized HTML
	ParentID       *uuid.UUID  `json:"parentId,omitempty"`
	Replies        []uuid.UUID `json:"replies"`
	IsEdited       bool        `json:"isEdited"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// CommentNode is a comment with its direct replies resolved, for the
// post detail view.
type CommentNode struct {
	Comment *Comment       `json:"comment"`
	Replies []*CommentNode `json:"replies"`
}

// StatusResponse is a generic success/message payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
