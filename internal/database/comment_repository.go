package database

import (
	"context"
	"fmt"
	"time"

	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID        string    `bson:"_id"`
	PostID    string    `bson:"postId"`
	AuthorID  string    `bson:"authorId"`
	Content   string    `bson:"content"`
	ParentID  *string   `bson:"parentId,omitempty"`
	Replies   []string  `bson:"replies"`
	IsEdited  bool      `bson:"isEdited"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// SaveComment creates or updates a comment in MongoDB
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := CommentDocument{
		ID:        comment.ID.String(),
		PostID:    comment.PostID.String(),
		AuthorID:  comment.AuthorID.String(),
		Content:   comment.Content,
		Replies:   idsToStrings(comment.Replies),
		IsEdited:  comment.IsEdited,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}

	// Handle optional ParentID
	if comment.ParentID != nil {
		parentIDStr := comment.ParentID.String()
		doc.ParentID = &parentIDStr
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Comments.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return utils.NewStoreError("save comment", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument

	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, utils.NewStoreError("find comment", err)
	}

	return commentDocumentToModel(&doc)
}

// UpdateCommentContent replaces the comment body, marks it edited and
// bumps the timestamp.
func (m *MongoDB) UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error {
	update := bson.M{
		"$set": bson.M{
			"content":   content,
			"isEdited":  true,
			"updatedAt": time.Now(),
		},
	}

	result, err := m.Comments.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return utils.NewStoreError("update comment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	return nil
}

// DeleteComment removes the comment row itself. Linkage cleanup is the
// caller's responsibility; replies are never cascaded.
func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := m.Comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.NewStoreError("delete comment", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	return nil
}

// AttachReply set-adds childID to the parent comment's replies.
func (m *MongoDB) AttachReply(ctx context.Context, parentID, childID uuid.UUID) error {
	return m.updateCommentArrays(ctx, parentID, bson.M{
		"$addToSet": bson.M{"replies": childID.String()},
	})
}

// DetachReply pulls childID from the parent comment's replies.
func (m *MongoDB) DetachReply(ctx context.Context, parentID, childID uuid.UUID) error {
	return m.updateCommentArrays(ctx, parentID, bson.M{
		"$pull": bson.M{"replies": childID.String()},
	})
}

func (m *MongoDB) updateCommentArrays(ctx context.Context, commentID uuid.UUID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now()}

	result, err := m.Comments.UpdateOne(ctx, bson.M{"_id": commentID.String()}, update)
	if err != nil {
		return utils.NewStoreError("update comment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	return nil
}

// GetPostComments retrieves all comments for a post, oldest first.
func (m *MongoDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.Comments.Find(ctx, bson.M{"postId": postID.String()}, opts)
	if err != nil {
		return nil, utils.NewStoreError("find post comments", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewStoreError("decode comment", err)
		}

		comment, err := commentDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewStoreError("iterate comments", err)
	}
	return comments, nil
}

// Helper function to convert CommentDocument to models.Comment
func commentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}

	postID, err := uuid.Parse(doc.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	var parentID *uuid.UUID
	if doc.ParentID != nil {
		parsed, err := uuid.Parse(*doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID: %v", err)
		}
		parentID = &parsed
	}

	replies, err := stringsToIDs(doc.Replies)
	if err != nil {
		return nil, err
	}

	return &models.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   doc.Content,
		ParentID:  parentID,
		Replies:   replies,
		IsEdited:  doc.IsEdited,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
