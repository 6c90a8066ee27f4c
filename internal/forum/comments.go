package forum

import (
	"context"
	"log"
	"strings"
	"time"

	"mangrove/internal/database"
	"mangrove/internal/models"
	"mangrove/internal/sanitize"
	"mangrove/internal/utils"

	"github.com/google/uuid"
)

// CommentTree creates, edits and deletes comments and replies,
// maintaining parent/child linkage and the author's denormalized
// comment counter.
type CommentTree struct {
	store  database.Store
	notify Notifier
}

func NewCommentTree(store database.Store, notify Notifier) *CommentTree {
	return &CommentTree{store: store, notify: orNoop(notify)}
}

// Create sanitizes content, persists the comment and links it into
// exactly one parent collection: the parent comment's replies when
// parentID is set, the post's top-level comments otherwise.
//
// The three writes (comment, parent link, author link) are separate
// store calls with no transaction; a crash in between leaves a comment
// that resolves by id but is absent from its parent's listing.
func (t *CommentTree) Create(ctx context.Context, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, utils.NewValidationError("Comment content is required")
	}

	if _, err := t.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := t.store.GetComment(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, utils.NewValidationError("Parent comment belongs to a different post")
		}
	}

	author, err := t.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   sanitize.Comment(content),
		ParentID:  parentID,
		Replies:   make([]uuid.UUID, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := t.store.SaveComment(ctx, comment); err != nil {
		return nil, err
	}

	if parentID != nil {
		err = t.store.AttachReply(ctx, *parentID, comment.ID)
	} else {
		err = t.store.AttachPostComment(ctx, postID, comment.ID)
	}
	if err != nil {
		return nil, err
	}

	if err := t.store.AttachUserComment(ctx, authorID, comment.ID); err != nil {
		return nil, err
	}

	// Author identity populated for immediate UI echo.
	comment.AuthorUsername = author.Username
	comment.AuthorPicture = author.ProfilePictureURL()

	log.Printf("Created comment %s on post %s by user %s", comment.ID, postID, authorID)
	t.notify.CommentCreated(postID, comment)

	return comment, nil
}

// Edit replaces the comment body. Only the author may edit; the comment
// is marked edited and its timestamp bumped.
func (t *CommentTree) Edit(ctx context.Context, commentID, requesterID uuid.UUID, newContent string) (*models.Comment, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, utils.NewValidationError("Comment content is required")
	}

	comment, err := t.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != requesterID {
		return nil, utils.NewForbiddenError("only the author can edit this comment")
	}

	sanitized := sanitize.Comment(newContent)
	if err := t.store.UpdateCommentContent(ctx, commentID, sanitized); err != nil {
		return nil, err
	}

	comment.Content = sanitized
	comment.IsEdited = true
	comment.UpdatedAt = time.Now()
	return comment, nil
}

// Delete removes the comment and unlinks it from exactly one parent
// collection. Replies of the deleted comment are neither deleted nor
// relinked: they stay addressable by id but drop out of the post's
// listing.
func (t *CommentTree) Delete(ctx context.Context, commentID, requesterID uuid.UUID) error {
	comment, err := t.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != requesterID {
		return utils.NewForbiddenError("only the author can delete this comment")
	}

	if comment.ParentID != nil {
		err = t.store.DetachReply(ctx, *comment.ParentID, commentID)
	} else {
		err = t.store.DetachPostComment(ctx, comment.PostID, commentID)
	}
	if err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
		// A missing parent means the parent was itself deleted; the
		// unlink is then a no-op, not a failure.
		return err
	}

	if err := t.store.DetachUserComment(ctx, requesterID, commentID); err != nil {
		return err
	}

	if err := t.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	log.Printf("Deleted comment %s from post %s", commentID, comment.PostID)
	return nil
}

// TreeForPost assembles the nested comment view for a post's detail
// page, author identities populated. Replies whose ancestors were
// deleted have no surviving parent node and are omitted, matching the
// orphaned-reply behavior of Delete.
func (t *CommentTree) TreeForPost(ctx context.Context, postID uuid.UUID) ([]*models.CommentNode, error) {
	comments, err := t.store.GetPostComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	t.populateAuthors(ctx, comments)

	nodes := make(map[uuid.UUID]*models.CommentNode, len(comments))
	for _, comment := range comments {
		nodes[comment.ID] = &models.CommentNode{Comment: comment, Replies: make([]*models.CommentNode, 0)}
	}

	var roots []*models.CommentNode
	for _, comment := range comments {
		node := nodes[comment.ID]
		if comment.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
		// Orphaned reply: parent deleted, unreachable from the listing.
	}

	return roots, nil
}

// Helper to populate author identities, cached per call.
func (t *CommentTree) populateAuthors(ctx context.Context, comments []*models.Comment) {
	cache := make(map[uuid.UUID]*models.User)
	for _, comment := range comments {
		author, ok := cache[comment.AuthorID]
		if !ok {
			var err error
			author, err = t.store.GetUser(ctx, comment.AuthorID)
			if err != nil {
				log.Printf("Error fetching author %s for comment %s: %v", comment.AuthorID, comment.ID, err)
				continue
			}
			cache[comment.AuthorID] = author
		}
		comment.AuthorUsername = author.Username
		comment.AuthorPicture = author.ProfilePictureURL()
	}
}
