package forum

import (
	"context"
	"testing"
	"time"

	"mangrove/internal/database"
	"mangrove/internal/models"

	"github.com/google/uuid"
)

// Shared fixtures for the service tests.

func newTestStore() *database.MemoryStore {
	return database.NewMemoryStore()
}

func seedUser(t *testing.T, store database.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:              uuid.New(),
		Username:        username,
		Email:           username + "@example.com",
		HashedPassword:  "irrelevant",
		SavedTags:       []string{},
		Posts:           []uuid.UUID{},
		Comments:        []uuid.UUID{},
		Friends:         []uuid.UUID{},
		BookmarkedPosts: []uuid.UUID{},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := store.SaveUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedPost(t *testing.T, store database.Store, author *models.User, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  author.ID,
		Title:     title,
		Content:   "<p>content of " + title + "</p>",
		Tags:      []string{},
		Upvotes:   []uuid.UUID{},
		Downvotes: []uuid.UUID{},
		Comments:  []uuid.UUID{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := store.SavePost(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

// recordingNotifier captures events for assertions.
type recordingNotifier struct {
	comments []*models.Comment
	votes    []*models.VoteResult
}

func (r *recordingNotifier) CommentCreated(postID uuid.UUID, comment *models.Comment) {
	r.comments = append(r.comments, comment)
}

func (r *recordingNotifier) VoteChanged(postID uuid.UUID, result *models.VoteResult) {
	r.votes = append(r.votes, result)
}
