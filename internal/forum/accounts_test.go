package forum

import (
	"context"
	"testing"

	"mangrove/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	ctx := context.Background()

	user, err := accounts.Register(ctx, "gator", "gator@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "gator", user.Username)
	assert.NotEqual(t, "password123", user.HashedPassword)

	loggedIn, err := accounts.Login(ctx, "gator", "password123")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = accounts.Login(ctx, "gator", "wrong-password")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))

	// Unknown user fails the same way as a wrong password
	_, err = accounts.Login(ctx, "nobody", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))
}

func TestRegisterValidation(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "ab", "a@example.com", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = accounts.Register(ctx, "gator", "a@example.com", "short")
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = accounts.Register(ctx, "gator", "not-an-email", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "gator", "gator@example.com", "password123")
	assert.NoError(t, err)

	_, err = accounts.Register(ctx, "gator", "other@example.com", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))

	_, err = accounts.Register(ctx, "swamp", "gator@example.com", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))
}

func TestProfileByUsername(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	posts := NewPostService(store)
	ctx := context.Background()

	user, err := accounts.Register(ctx, "gator", "gator@example.com", "password123")
	assert.NoError(t, err)

	post, err := posts.Create(ctx, user.ID, "Mine", "<p>body</p>", nil)
	assert.NoError(t, err)

	tree := NewCommentTree(store, nil)
	comment, err := tree.Create(ctx, post.ID, user.ID, "mine too", nil)
	assert.NoError(t, err)

	profile, err := accounts.ProfileByUsername(ctx, "gator")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Len(t, profile.Posts, 1)
	assert.Equal(t, post.ID, profile.Posts[0].ID)
	assert.Len(t, profile.Comments, 1)
	assert.Equal(t, comment.ID, profile.Comments[0].ID)

	_, err = accounts.ProfileByUsername(ctx, "nobody")
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestUpdateProfile(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	ctx := context.Background()

	user, err := accounts.Register(ctx, "gator", "gator@example.com", "password123")
	assert.NoError(t, err)

	about := "I live in a swamp"
	updated, err := accounts.UpdateProfile(ctx, user.ID, ProfileUpdate{
		AboutMe:   &about,
		SavedTags: []string{"swamp"},
	})
	assert.NoError(t, err)
	assert.Equal(t, about, updated.AboutMe)
	assert.Equal(t, []string{"swamp"}, updated.SavedTags)
	// Untouched fields survive
	assert.Equal(t, "gator@example.com", updated.Email)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	store := newTestStore()
	accounts := NewAccountService(store)
	ctx := context.Background()

	user, err := accounts.Register(ctx, "gator", "gator@example.com", "password123")
	assert.NoError(t, err)

	// Wrong current password is rejected
	_, err = accounts.UpdateProfile(ctx, user.ID, ProfileUpdate{
		CurrentPassword: "nope",
		NewPassword:     "newpassword1",
	})
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))

	_, err = accounts.UpdateProfile(ctx, user.ID, ProfileUpdate{
		CurrentPassword: "password123",
		NewPassword:     "newpassword1",
	})
	assert.NoError(t, err)

	_, err = accounts.Login(ctx, "gator", "newpassword1")
	assert.NoError(t, err)
	_, err = accounts.Login(ctx, "gator", "password123")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidCredentials))
}
