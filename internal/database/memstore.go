package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local
// development. It mirrors the document-store atomicity contract: each
// method mutates one record under the lock, and there is nothing
// resembling a transaction across methods.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	posts    map[uuid.UUID]*models.Post
	comments map[uuid.UUID]*models.Comment
}

var _ Store = (*MemoryStore)(nil)

func errUserNotFound() error {
	return utils.NewAppError(utils.ErrNotFound, "User not found", nil)
}

func errPostNotFound() error {
	return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
}

func errCommentNotFound() error {
	return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		posts:    make(map[uuid.UUID]*models.Post),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Records are cloned on the way in and out so callers never alias the
// stored state.

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.SavedTags = append([]string(nil), u.SavedTags...)
	c.Posts = cloneIDs(u.Posts)
	c.Comments = cloneIDs(u.Comments)
	c.Friends = cloneIDs(u.Friends)
	c.BookmarkedPosts = cloneIDs(u.BookmarkedPosts)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.Upvotes = cloneIDs(p.Upvotes)
	c.Downvotes = cloneIDs(p.Downvotes)
	c.Comments = cloneIDs(p.Comments)
	return &c
}

func cloneComment(c *models.Comment) *models.Comment {
	out := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	out.Replies = cloneIDs(c.Replies)
	return &out
}

func addToSet(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// User methods

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, errUserNotFound()
	}
	return cloneUser(user), nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, errUserNotFound()
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, errUserNotFound()
}

func (s *MemoryStore) updateUser(id uuid.UUID, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return errUserNotFound()
	}
	apply(user)
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) AddBookmark(ctx context.Context, userID, postID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.BookmarkedPosts = addToSet(u.BookmarkedPosts, postID)
	})
}

func (s *MemoryStore) RemoveBookmark(ctx context.Context, userID, postID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.BookmarkedPosts = pull(u.BookmarkedPosts, postID)
	})
}

func (s *MemoryStore) AttachUserPost(ctx context.Context, userID, postID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.Posts = addToSet(u.Posts, postID)
		u.PostCount++
	})
}

func (s *MemoryStore) DetachUserPost(ctx context.Context, userID, postID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.Posts = pull(u.Posts, postID)
		u.PostCount--
	})
}

func (s *MemoryStore) AttachUserComment(ctx context.Context, userID, commentID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.Comments = addToSet(u.Comments, commentID)
		u.CommentCount++
	})
}

func (s *MemoryStore) DetachUserComment(ctx context.Context, userID, commentID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) {
		u.Comments = pull(u.Comments, commentID)
		u.CommentCount--
	})
}

// Post methods

func (s *MemoryStore) SavePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, errPostNotFound()
	}
	return clonePost(post), nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return errPostNotFound()
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) AddVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return nil, errPostNotFound()
	}
	if direction == models.VoteDown {
		post.Downvotes = addToSet(post.Downvotes, userID)
		post.Upvotes = pull(post.Upvotes, userID)
	} else {
		post.Upvotes = addToSet(post.Upvotes, userID)
		post.Downvotes = pull(post.Downvotes, userID)
	}
	post.UpdatedAt = time.Now()
	return clonePost(post), nil
}

func (s *MemoryStore) RemoveVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return nil, errPostNotFound()
	}
	if direction == models.VoteDown {
		post.Downvotes = pull(post.Downvotes, userID)
	} else {
		post.Upvotes = pull(post.Upvotes, userID)
	}
	post.UpdatedAt = time.Now()
	return clonePost(post), nil
}

func (s *MemoryStore) updatePost(id uuid.UUID, apply func(*models.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return errPostNotFound()
	}
	apply(post)
	post.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) AttachPostComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return s.updatePost(postID, func(p *models.Post) {
		p.Comments = addToSet(p.Comments, commentID)
	})
}

func (s *MemoryStore) DetachPostComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return s.updatePost(postID, func(p *models.Post) {
		p.Comments = pull(p.Comments, commentID)
	})
}

func (s *MemoryStore) listPosts() []*models.Post {
	out := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		out = append(out, clonePost(post))
	}
	return out
}

func window(posts []*models.Post, limit, skip int) []*models.Post {
	if skip >= len(posts) {
		return []*models.Post{}
	}
	posts = posts[skip:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts
}

func (s *MemoryStore) GetRecentPosts(ctx context.Context, limit, skip int) ([]*models.Post, error) {
	s.mu.RLock()
	posts := s.listPosts()
	s.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return window(posts, limit, skip), nil
}

func (s *MemoryStore) GetTrendingPosts(ctx context.Context, limit, skip int) ([]*models.Post, error) {
	s.mu.RLock()
	posts := s.listPosts()
	s.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if len(posts[i].Upvotes) != len(posts[j].Upvotes) {
			return len(posts[i].Upvotes) > len(posts[j].Upvotes)
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return window(posts, limit, skip), nil
}

func (s *MemoryStore) SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error) {
	s.mu.RLock()
	all := s.listPosts()
	s.mu.RUnlock()

	query = strings.ToLower(query)
	matched := make([]*models.Post, 0)
	for _, post := range all {
		if query != "" &&
			(strings.Contains(strings.ToLower(post.Title), query) ||
				strings.Contains(strings.ToLower(post.Content), query)) {
			matched = append(matched, post)
			continue
		}
		if tag != "" {
			for _, t := range post.Tags {
				if t == tag {
					matched = append(matched, post)
					break
				}
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return window(matched, limit, 0), nil
}

func (s *MemoryStore) GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := s.posts[id]; ok {
			out = append(out, clonePost(post))
		}
	}
	return out, nil
}

// Comment methods

func (s *MemoryStore) SaveComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, errCommentNotFound()
	}
	return cloneComment(comment), nil
}

func (s *MemoryStore) UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return errCommentNotFound()
	}
	comment.Content = content
	comment.IsEdited = true
	comment.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return errCommentNotFound()
	}
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) AttachReply(ctx context.Context, parentID, childID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, ok := s.comments[parentID]
	if !ok {
		return errCommentNotFound()
	}
	parent.Replies = addToSet(parent.Replies, childID)
	parent.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DetachReply(ctx context.Context, parentID, childID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, ok := s.comments[parentID]
	if !ok {
		return errCommentNotFound()
	}
	parent.Replies = pull(parent.Replies, childID)
	parent.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID == postID {
			out = append(out, cloneComment(comment))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Health

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) CountPosts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.posts)), nil
}

func (s *MemoryStore) CountComments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.comments)), nil
}
