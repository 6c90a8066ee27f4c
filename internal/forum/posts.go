package forum

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"mangrove/internal/database"
	"mangrove/internal/models"
	"mangrove/internal/sanitize"
	"mangrove/internal/utils"

	"github.com/google/uuid"
)

// First image URL embedded in the submitted content, captured before the
// sanitizer strips the tag.
var imageSrcPattern = regexp.MustCompile(`<img[^>]+src="?([^"\s>]+)"?`)

// PostService creates, edits and deletes posts, keeping the owner's
// post list and counter in step.
type PostService struct {
	store database.Store
}

func NewPostService(store database.Store) *PostService {
	return &PostService{store: store}
}

// Create sanitizes the content with the post allow-list, extracts the
// first embedded image URL, persists the post and attaches it to the
// author. The two writes are not transactional.
func (p *PostService) Create(ctx context.Context, authorID uuid.UUID, title, content string, tags []string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, utils.NewValidationError("Title and content are required")
	}

	if _, err := p.store.GetUser(ctx, authorID); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}

	var image string
	if match := imageSrcPattern.FindStringSubmatch(content); match != nil {
		image = match[1]
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Content:   sanitize.Post(content),
		Image:     image,
		Tags:      tags,
		Upvotes:   make([]uuid.UUID, 0),
		Downvotes: make([]uuid.UUID, 0),
		Comments:  make([]uuid.UUID, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.store.SavePost(ctx, post); err != nil {
		return nil, err
	}

	if err := p.store.AttachUserPost(ctx, authorID, post.ID); err != nil {
		return nil, err
	}

	log.Printf("Created post %s by user %s", post.ID, authorID)
	return post, nil
}

// Edit updates title, content and tags. Only the owner may edit; the
// author reference is immutable.
func (p *PostService) Edit(ctx context.Context, postID, requesterID uuid.UUID, title, content string, tags []string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, utils.NewValidationError("Title and content are required")
	}

	post, err := p.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != requesterID {
		return nil, utils.NewForbiddenError("only the owner can edit this post")
	}

	post.Title = title
	post.Content = sanitize.Post(content)
	if tags != nil {
		post.Tags = tags
	}
	if match := imageSrcPattern.FindStringSubmatch(content); match != nil {
		post.Image = match[1]
	}
	post.UpdatedAt = time.Now()

	if err := p.store.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the post and detaches it from the owner. Comments of
// the post are not cascaded; they stay addressable by id.
func (p *PostService) Delete(ctx context.Context, postID, requesterID uuid.UUID) error {
	post, err := p.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != requesterID {
		return utils.NewForbiddenError("only the owner can delete this post")
	}

	if err := p.store.DeletePost(ctx, postID); err != nil {
		return err
	}

	if err := p.store.DetachUserPost(ctx, requesterID, postID); err != nil {
		return err
	}

	log.Printf("Deleted post %s", postID)
	return nil
}
