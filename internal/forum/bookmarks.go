package forum

import (
	"context"

	"mangrove/internal/database"

	"github.com/google/uuid"
)

// BookmarkSet toggles a user's save/unsave of a post. Membership lives
// on the user document only; posts carry no bookmark counter.
type BookmarkSet struct {
	store database.Store
}

func NewBookmarkSet(store database.Store) *BookmarkSet {
	return &BookmarkSet{store: store}
}

// BookmarkResult reports the new membership state.
type BookmarkResult struct {
	IsBookmarked bool   `json:"isBookmarked"`
	Message      string `json:"message"`
}

// Toggle flips postID's membership in the user's bookmark set and
// returns the new state.
func (b *BookmarkSet) Toggle(ctx context.Context, postID, userID uuid.UUID) (*BookmarkResult, error) {
	// The post must resolve even though only the user document changes.
	if _, err := b.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.HasBookmarked(postID) {
		if err := b.store.RemoveBookmark(ctx, userID, postID); err != nil {
			return nil, err
		}
		return &BookmarkResult{IsBookmarked: false, Message: "Post unbookmarked"}, nil
	}

	if err := b.store.AddBookmark(ctx, userID, postID); err != nil {
		return nil, err
	}
	return &BookmarkResult{IsBookmarked: true, Message: "Post bookmarked"}, nil
}
