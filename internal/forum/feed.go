package forum

import (
	"context"
	"log"

	"mangrove/internal/database"
	"mangrove/internal/models"

	"github.com/google/uuid"
)

const (
	// Page size for anonymous and API listings. The authenticated home
	// feed is unbounded.
	AnonymousPageSize = 15

	searchResultLimit = 20
)

// FeedAssembler composes posts with per-viewer vote and bookmark
// annotations for list and detail views.
type FeedAssembler struct {
	store database.Store
}

func NewFeedAssembler(store database.Store) *FeedAssembler {
	return &FeedAssembler{store: store}
}

// Annotate computes userVote and isBookmarked for each post from the
// viewer's perspective. Anonymous viewers always get null/false.
func (f *FeedAssembler) Annotate(posts []*models.Post, viewer *models.Viewer) []*models.PostView {
	views := make([]*models.PostView, len(posts))
	for i, post := range posts {
		views[i] = annotatePost(post, viewer)
	}
	return views
}

func annotatePost(post *models.Post, viewer *models.Viewer) *models.PostView {
	view := &models.PostView{Post: post}
	if viewer.IsAnonymous() {
		return view
	}

	if post.HasUpvoted(viewer.ID) {
		label := models.UserVoteUp
		view.UserVote = &label
	} else if post.HasDownvoted(viewer.ID) {
		label := models.UserVoteDown
		view.UserVote = &label
	}

	view.IsBookmarked = viewer.HasBookmarked(post.ID)
	return view
}

// Home returns the reverse-chronological feed. Anonymous viewers get a
// single page; authenticated viewers get everything.
func (f *FeedAssembler) Home(ctx context.Context, viewer *models.Viewer) ([]*models.PostView, error) {
	limit := AnonymousPageSize
	if !viewer.IsAnonymous() {
		limit = 0
	}

	posts, err := f.store.GetRecentPosts(ctx, limit, 0)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, posts)
	return f.Annotate(posts, viewer), nil
}

// Trending orders by upvote count descending, newest first on ties.
func (f *FeedAssembler) Trending(ctx context.Context, viewer *models.Viewer) ([]*models.PostView, error) {
	posts, err := f.store.GetTrendingPosts(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, posts)
	return f.Annotate(posts, viewer), nil
}

// TrendingPage returns one fixed-size page of the trending ordering.
// Pages are 1-based.
func (f *FeedAssembler) TrendingPage(ctx context.Context, viewer *models.Viewer, page int) ([]*models.PostView, error) {
	if page < 1 {
		page = 1
	}

	posts, err := f.store.GetTrendingPosts(ctx, AnonymousPageSize, (page-1)*AnonymousPageSize)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, posts)
	return f.Annotate(posts, viewer), nil
}

// Search matches a query against title/content, or a tag against the
// tag set, reverse chronological.
func (f *FeedAssembler) Search(ctx context.Context, viewer *models.Viewer, query, tag string) ([]*models.PostView, error) {
	posts, err := f.store.SearchPosts(ctx, query, tag, searchResultLimit)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, posts)
	return f.Annotate(posts, viewer), nil
}

// Saved returns the viewer's bookmarked posts in bookmark order.
func (f *FeedAssembler) Saved(ctx context.Context, viewer *models.Viewer) ([]*models.PostView, error) {
	posts, err := f.store.GetPostsByIDs(ctx, viewer.BookmarkedPosts)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, posts)
	return f.Annotate(posts, viewer), nil
}

// Detail returns a single annotated post.
func (f *FeedAssembler) Detail(ctx context.Context, viewer *models.Viewer, postID uuid.UUID) (*models.PostView, error) {
	post, err := f.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	f.populateAuthors(ctx, []*models.Post{post})
	return annotatePost(post, viewer), nil
}

// Helper to populate post author identities, cached per call.
func (f *FeedAssembler) populateAuthors(ctx context.Context, posts []*models.Post) {
	cache := make(map[uuid.UUID]*models.User)
	for _, post := range posts {
		author, ok := cache[post.AuthorID]
		if !ok {
			var err error
			author, err = f.store.GetUser(ctx, post.AuthorID)
			if err != nil {
				log.Printf("Error fetching author %s for post %s: %v", post.AuthorID, post.ID, err)
				continue
			}
			cache[post.AuthorID] = author
		}
		post.AuthorUsername = author.Username
		post.AuthorPicture = author.ProfilePictureURL()
	}
}
