package forum

import (
	"context"
	"testing"

	"mangrove/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBookmarkToggle(t *testing.T) {
	store := newTestStore()
	marks := NewBookmarkSet(store)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	reader := seedUser(t, store, "reader")
	post := seedPost(t, store, author, "first")

	// First toggle saves
	result, err := marks.Toggle(ctx, post.ID, reader.ID)
	assert.NoError(t, err)
	assert.True(t, result.IsBookmarked)
	assert.Equal(t, "Post bookmarked", result.Message)

	user, err := store.GetUser(ctx, reader.ID)
	assert.NoError(t, err)
	assert.True(t, user.HasBookmarked(post.ID))

	// Second toggle removes
	result, err = marks.Toggle(ctx, post.ID, reader.ID)
	assert.NoError(t, err)
	assert.False(t, result.IsBookmarked)
	assert.Equal(t, "Post unbookmarked", result.Message)

	user, err = store.GetUser(ctx, reader.ID)
	assert.NoError(t, err)
	assert.False(t, user.HasBookmarked(post.ID))

	// The post document never changes
	stored, err := store.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, post.UpdatedAt.Unix(), stored.UpdatedAt.Unix())
}

func TestBookmarkMissingPost(t *testing.T) {
	store := newTestStore()
	marks := NewBookmarkSet(store)

	reader := seedUser(t, store, "reader")

	_, err := marks.Toggle(context.Background(), uuid.New(), reader.ID)
	assert.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestBookmarksAreIndependentPerUser(t *testing.T) {
	store := newTestStore()
	marks := NewBookmarkSet(store)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	post := seedPost(t, store, author, "first")

	_, err := marks.Toggle(ctx, post.ID, alice.ID)
	assert.NoError(t, err)

	bobUser, err := store.GetUser(ctx, bob.ID)
	assert.NoError(t, err)
	assert.False(t, bobUser.HasBookmarked(post.ID))
}
