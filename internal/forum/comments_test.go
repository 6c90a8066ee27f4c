package forum

import (
	"context"
	"testing"

	"mangrove/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestCreateTopLevelComment(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	commenter := seedUser(t, store, "commenter")
	post := seedPost(t, store, author, "first")

	comment, err := tree.Create(ctx, post.ID, commenter.ID, "<p>hello <script>alert(1)</script>world</p>", nil)
	assert.NoError(t, err)
	assert.True(t, comment.IsTopLevel())
	assert.Equal(t, "commenter", comment.AuthorUsername)
	assert.NotContains(t, comment.Content, "script")
	assert.Contains(t, comment.Content, "hello")

	// Linked into the post's top-level list
	storedPost, err := store.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Contains(t, storedPost.Comments, comment.ID)

	// Linked into the author's comment list with the counter bumped
	storedUser, err := store.GetUser(ctx, commenter.ID)
	assert.NoError(t, err)
	assert.Contains(t, storedUser.Comments, comment.ID)
	assert.Equal(t, 1, storedUser.CommentCount)
}

func TestCreateReplyLinksParentOnly(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	parent, err := tree.Create(ctx, post.ID, author.ID, "parent", nil)
	assert.NoError(t, err)

	reply, err := tree.Create(ctx, post.ID, author.ID, "reply", &parent.ID)
	assert.NoError(t, err)
	assert.Equal(t, parent.ID, *reply.ParentID)

	// The reply hangs off the parent, not the post
	storedParent, err := store.GetComment(ctx, parent.ID)
	assert.NoError(t, err)
	assert.Contains(t, storedParent.Replies, reply.ID)

	storedPost, err := store.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.NotContains(t, storedPost.Comments, reply.ID)
}

func TestCreateReplyAcrossPostsRejected(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	postA := seedPost(t, store, author, "a")
	postB := seedPost(t, store, author, "b")

	parent, err := tree.Create(ctx, postA.ID, author.ID, "on post a", nil)
	assert.NoError(t, err)

	_, err = tree.Create(ctx, postB.ID, author.ID, "wrong post", &parent.ID)
	assert.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}

func TestEditCommentAuthorOnly(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	other := seedUser(t, store, "other")
	post := seedPost(t, store, author, "first")

	comment, err := tree.Create(ctx, post.ID, author.ID, "original", nil)
	assert.NoError(t, err)

	_, err = tree.Edit(ctx, comment.ID, other.ID, "hijacked")
	assert.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrForbidden))

	edited, err := tree.Edit(ctx, comment.ID, author.ID, "updated")
	assert.NoError(t, err)
	assert.True(t, edited.IsEdited)
	assert.Contains(t, edited.Content, "updated")
}

func TestDeleteReplyDetachesFromParent(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	parent, err := tree.Create(ctx, post.ID, author.ID, "parent", nil)
	assert.NoError(t, err)
	reply, err := tree.Create(ctx, post.ID, author.ID, "reply", &parent.ID)
	assert.NoError(t, err)

	assert.NoError(t, tree.Delete(ctx, reply.ID, author.ID))

	storedParent, err := store.GetComment(ctx, parent.ID)
	assert.NoError(t, err)
	assert.NotContains(t, storedParent.Replies, reply.ID)

	_, err = store.GetComment(ctx, reply.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	storedUser, err := store.GetUser(ctx, author.ID)
	assert.NoError(t, err)
	assert.NotContains(t, storedUser.Comments, reply.ID)
}

func TestDeleteParentOrphansReplies(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	parent, err := tree.Create(ctx, post.ID, author.ID, "parent", nil)
	assert.NoError(t, err)
	reply, err := tree.Create(ctx, post.ID, author.ID, "reply", &parent.ID)
	assert.NoError(t, err)

	assert.NoError(t, tree.Delete(ctx, parent.ID, author.ID))

	// The reply still resolves by id
	orphan, err := store.GetComment(ctx, reply.ID)
	assert.NoError(t, err)
	assert.Equal(t, parent.ID, *orphan.ParentID)

	// But it is unreachable from the post's tree
	roots, err := tree.TreeForPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Empty(t, roots)

	// Deleting the orphan tolerates the missing parent
	assert.NoError(t, tree.Delete(ctx, reply.ID, author.ID))
}

func TestTreeForPostNesting(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	top1, err := tree.Create(ctx, post.ID, author.ID, "top one", nil)
	assert.NoError(t, err)
	top2, err := tree.Create(ctx, post.ID, author.ID, "top two", nil)
	assert.NoError(t, err)
	reply, err := tree.Create(ctx, post.ID, author.ID, "nested", &top1.ID)
	assert.NoError(t, err)
	deep, err := tree.Create(ctx, post.ID, author.ID, "deeper", &reply.ID)
	assert.NoError(t, err)

	roots, err := tree.TreeForPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Len(t, roots, 2)

	byID := map[string]int{}
	for i, root := range roots {
		byID[root.Comment.ID.String()] = i
	}
	first := roots[byID[top1.ID.String()]]
	assert.Len(t, first.Replies, 1)
	assert.Equal(t, reply.ID, first.Replies[0].Comment.ID)
	assert.Len(t, first.Replies[0].Replies, 1)
	assert.Equal(t, deep.ID, first.Replies[0].Replies[0].Comment.ID)

	second := roots[byID[top2.ID.String()]]
	assert.Empty(t, second.Replies)

	// Author identity populated throughout
	assert.Equal(t, "author", first.Comment.AuthorUsername)
	assert.NotEmpty(t, first.Comment.AuthorPicture)
}

func TestCreateCommentNotifies(t *testing.T) {
	store := newTestStore()
	notifier := &recordingNotifier{}
	tree := NewCommentTree(store, notifier)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	comment, err := tree.Create(ctx, post.ID, author.ID, "hello", nil)
	assert.NoError(t, err)
	assert.Len(t, notifier.comments, 1)
	assert.Equal(t, comment.ID, notifier.comments[0].ID)
}

func TestCreateCommentValidation(t *testing.T) {
	store := newTestStore()
	tree := NewCommentTree(store, nil)
	ctx := context.Background()

	author := seedUser(t, store, "author")
	post := seedPost(t, store, author, "first")

	_, err := tree.Create(ctx, post.ID, author.ID, "   ", nil)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}
