package database

import (
	"context"

	"mangrove/internal/models"

	"github.com/google/uuid"
)

// Store defines the document-store operations the application core needs.
// Implementations guarantee per-document atomicity only: array adds and
// removals and counter increments are atomic on a single document, and
// there are no multi-document transactions.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	AddBookmark(ctx context.Context, userID, postID uuid.UUID) error
	RemoveBookmark(ctx context.Context, userID, postID uuid.UUID) error
	AttachUserPost(ctx context.Context, userID, postID uuid.UUID) error
	DetachUserPost(ctx context.Context, userID, postID uuid.UUID) error
	AttachUserComment(ctx context.Context, userID, commentID uuid.UUID) error
	DetachUserComment(ctx context.Context, userID, commentID uuid.UUID) error

	// Post methods
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	// AddVote set-adds userID to the list matching direction and pulls it
	// from the opposite list in a single atomic update, returning the
	// post as updated. RemoveVote pulls userID from the list matching
	// direction only.
	AddVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error)
	RemoveVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error)
	AttachPostComment(ctx context.Context, postID, commentID uuid.UUID) error
	DetachPostComment(ctx context.Context, postID, commentID uuid.UUID) error
	GetRecentPosts(ctx context.Context, limit, skip int) ([]*models.Post, error)
	GetTrendingPosts(ctx context.Context, limit, skip int) ([]*models.Post, error)
	SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error)

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
	AttachReply(ctx context.Context, parentID, childID uuid.UUID) error
	DetachReply(ctx context.Context, parentID, childID uuid.UUID) error
	GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)

	// Health
	CountUsers(ctx context.Context) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CountComments(ctx context.Context) (int64, error)
}
