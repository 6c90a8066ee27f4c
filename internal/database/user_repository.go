// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID              string    `bson:"_id"`
	Username        string    `bson:"username"`
	Email           string    `bson:"email"`
	HashedPassword  string    `bson:"hashedPassword"`
	ProfilePicture  string    `bson:"profilePicture"`
	Country         string    `bson:"country"`
	AboutMe         string    `bson:"aboutMe"`
	SavedTags       []string  `bson:"savedTags"`
	Posts           []string  `bson:"posts"`
	Comments        []string  `bson:"comments"`
	Friends         []string  `bson:"friends"`
	BookmarkedPosts []string  `bson:"bookmarkedPosts"`
	PostCount       int       `bson:"postCount"`
	CommentCount    int       `bson:"commentCount"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid ID in database: %v", err)
		}
		out[i] = id
	}
	return out, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		HashedPassword:  user.HashedPassword,
		ProfilePicture:  user.ProfilePicture,
		Country:         user.Country,
		AboutMe:         user.AboutMe,
		SavedTags:       user.SavedTags,
		Posts:           idsToStrings(user.Posts),
		Comments:        idsToStrings(user.Comments),
		Friends:         idsToStrings(user.Friends),
		BookmarkedPosts: idsToStrings(user.BookmarkedPosts),
		PostCount:       user.PostCount,
		CommentCount:    user.CommentCount,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if doc.SavedTags == nil {
		doc.SavedTags = []string{}
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

func userDocumentToModel(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	posts, err := stringsToIDs(doc.Posts)
	if err != nil {
		return nil, err
	}
	comments, err := stringsToIDs(doc.Comments)
	if err != nil {
		return nil, err
	}
	friends, err := stringsToIDs(doc.Friends)
	if err != nil {
		return nil, err
	}
	bookmarks, err := stringsToIDs(doc.BookmarkedPosts)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:              id,
		Username:        doc.Username,
		Email:           doc.Email,
		HashedPassword:  doc.HashedPassword,
		ProfilePicture:  doc.ProfilePicture,
		Country:         doc.Country,
		AboutMe:         doc.AboutMe,
		SavedTags:       doc.SavedTags,
		Posts:           posts,
		Comments:        comments,
		Friends:         friends,
		BookmarkedPosts: bookmarks,
		PostCount:       doc.PostCount,
		CommentCount:    doc.CommentCount,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, utils.NewStoreError("find user", err)
	}

	return userDocumentToModel(&doc)
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

// GetUserByUsername retrieves a user by their unique username
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by their unique email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

// AddBookmark set-adds postID to the user's bookmarkedPosts.
func (m *MongoDB) AddBookmark(ctx context.Context, userID, postID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$addToSet": bson.M{"bookmarkedPosts": postID.String()},
	})
}

// RemoveBookmark pulls postID from the user's bookmarkedPosts.
func (m *MongoDB) RemoveBookmark(ctx context.Context, userID, postID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$pull": bson.M{"bookmarkedPosts": postID.String()},
	})
}

// AttachUserPost appends postID to the user's posts and increments postCount.
func (m *MongoDB) AttachUserPost(ctx context.Context, userID, postID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$addToSet": bson.M{"posts": postID.String()},
		"$inc":      bson.M{"postCount": 1},
	})
}

// DetachUserPost pulls postID from the user's posts and decrements postCount.
func (m *MongoDB) DetachUserPost(ctx context.Context, userID, postID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$pull": bson.M{"posts": postID.String()},
		"$inc":  bson.M{"postCount": -1},
	})
}

// AttachUserComment appends commentID to the user's comments and increments commentCount.
func (m *MongoDB) AttachUserComment(ctx context.Context, userID, commentID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$addToSet": bson.M{"comments": commentID.String()},
		"$inc":      bson.M{"commentCount": 1},
	})
}

// DetachUserComment pulls commentID from the user's comments and decrements commentCount.
func (m *MongoDB) DetachUserComment(ctx context.Context, userID, commentID uuid.UUID) error {
	return m.updateUserArrays(ctx, userID, bson.M{
		"$pull": bson.M{"comments": commentID.String()},
		"$inc":  bson.M{"commentCount": -1},
	})
}

func (m *MongoDB) updateUserArrays(ctx context.Context, userID uuid.UUID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now()}

	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": userID.String()}, update)
	if err != nil {
		return utils.NewStoreError("update user", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "User not found", nil)
	}
	return nil
}
