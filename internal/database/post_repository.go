// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID        string    `bson:"_id"`
	AuthorID  string    `bson:"authorId"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Image     string    `bson:"image,omitempty"`
	Tags      []string  `bson:"tags"`
	Upvotes   []string  `bson:"upvotes"`
	Downvotes []string  `bson:"downvotes"`
	Comments  []string  `bson:"comments"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func postModelToDocument(post *models.Post) *PostDocument {
	doc := &PostDocument{
		ID:        post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		Title:     post.Title,
		Content:   post.Content,
		Image:     post.Image,
		Tags:      post.Tags,
		Upvotes:   idsToStrings(post.Upvotes),
		Downvotes: idsToStrings(post.Downvotes),
		Comments:  idsToStrings(post.Comments),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return doc
}

func postDocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	upvotes, err := stringsToIDs(doc.Upvotes)
	if err != nil {
		return nil, err
	}
	downvotes, err := stringsToIDs(doc.Downvotes)
	if err != nil {
		return nil, err
	}
	comments, err := stringsToIDs(doc.Comments)
	if err != nil {
		return nil, err
	}

	return &models.Post{
		ID:        id,
		AuthorID:  authorID,
		Title:     doc.Title,
		Content:   doc.Content,
		Image:     doc.Image,
		Tags:      doc.Tags,
		Upvotes:   upvotes,
		Downvotes: downvotes,
		Comments:  comments,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// SavePost creates or updates a post in MongoDB.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := postModelToDocument(post)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return utils.NewStoreError("save post", err)
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, utils.NewStoreError("find post", err)
	}

	return postDocumentToModel(&doc)
}

// DeletePost removes the post row itself. Comments are not cascaded.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.NewStoreError("delete post", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return nil
}

func voteField(direction models.VoteDirection) (string, string) {
	if direction == models.VoteDown {
		return "downvotes", "upvotes"
	}
	return "upvotes", "downvotes"
}

// AddVote set-adds userID to the list matching direction and pulls it
// from the opposite list in one atomic update, so the voter can never
// appear in both lists and repeated adds cannot duplicate.
func (m *MongoDB) AddVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error) {
	field, opposite := voteField(direction)
	update := bson.M{
		"$addToSet": bson.M{field: userID.String()},
		"$pull":     bson.M{opposite: userID.String()},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	return m.findPostAndUpdate(ctx, postID, update)
}

// RemoveVote pulls userID from the list matching direction (vote retraction).
func (m *MongoDB) RemoveVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error) {
	field, _ := voteField(direction)
	update := bson.M{
		"$pull": bson.M{field: userID.String()},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return m.findPostAndUpdate(ctx, postID, update)
}

func (m *MongoDB) findPostAndUpdate(ctx context.Context, postID uuid.UUID, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": postID.String()}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, utils.NewStoreError("update post", err)
	}

	return postDocumentToModel(&doc)
}

// AttachPostComment appends a top-level comment reference to the post.
func (m *MongoDB) AttachPostComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return m.updatePostArrays(ctx, postID, bson.M{
		"$addToSet": bson.M{"comments": commentID.String()},
	})
}

// DetachPostComment pulls a top-level comment reference from the post.
func (m *MongoDB) DetachPostComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return m.updatePostArrays(ctx, postID, bson.M{
		"$pull": bson.M{"comments": commentID.String()},
	})
}

func (m *MongoDB) updatePostArrays(ctx context.Context, postID uuid.UUID, update bson.M) error {
	result, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, update)
	if err != nil {
		return utils.NewStoreError("update post", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return nil
}

// GetRecentPosts retrieves posts in reverse chronological order.
// A limit of 0 means no limit.
func (m *MongoDB) GetRecentPosts(ctx context.Context, limit, skip int) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewStoreError("find posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// GetTrendingPosts sorts by upvote-list cardinality descending, with
// creation time descending as the tie-break.
func (m *MongoDB) GetTrendingPosts(ctx context.Context, limit, skip int) ([]*models.Post, error) {
	pipeline := []bson.M{
		{"$addFields": bson.M{
			"upvoteCount": bson.M{"$size": bson.M{"$ifNull": []interface{}{"$upvotes", []string{}}}},
		}},
		{"$sort": bson.D{
			{Key: "upvoteCount", Value: -1},
			{Key: "createdAt", Value: -1},
		}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.M{"$skip": skip})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}

	cursor, err := m.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, utils.NewStoreError("aggregate trending posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// SearchPosts matches a case-insensitive substring of title or content,
// or exact tag membership when tag is set.
func (m *MongoDB) SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error) {
	var filter bson.M
	switch {
	case query != "":
		filter = bson.M{"$or": []bson.M{
			{"title": bson.M{"$regex": query, "$options": "i"}},
			{"content": bson.M{"$regex": query, "$options": "i"}},
		}}
	case tag != "":
		filter = bson.M{"tags": bson.M{"$in": []string{tag}}}
	default:
		return []*models.Post{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewStoreError("search posts", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// GetPostsByIDs fetches the given posts, preserving the order of ids.
func (m *MongoDB) GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}

	cursor, err := m.Posts.Find(ctx, bson.M{"_id": bson.M{"$in": idsToStrings(ids)}})
	if err != nil {
		return nil, utils.NewStoreError("find posts by IDs", err)
	}
	defer cursor.Close(ctx)

	posts, err := decodePosts(ctx, cursor)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}

	ordered := make([]*models.Post, 0, len(posts))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			ordered = append(ordered, post)
		}
	}
	return ordered, nil
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]*models.Post, error) {
	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding post document: %v", err)
			continue
		}

		post, err := postDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting document to model: %v", err)
			continue
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewStoreError("iterate posts", err)
	}
	return posts, nil
}
