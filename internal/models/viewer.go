package models

import "github.com/google/uuid"

// Viewer is the request-scoped resolved identity: either an
// authenticated user's minimal identity or anonymous. It is constructed
// once per request and never persisted.
type Viewer struct {
	ID              uuid.UUID
	Username        string
	ProfilePicture  string
	BookmarkedPosts []uuid.UUID
}

// Anonymous returns the unauthenticated viewer.
func Anonymous() *Viewer {
	return nil
}

// IsAnonymous reports whether the viewer carries no identity.
func (v *Viewer) IsAnonymous() bool {
	return v == nil || v.ID == uuid.Nil
}

// HasBookmarked reports membership of postID in the viewer's bookmark set.
// Always false for anonymous viewers.
func (v *Viewer) HasBookmarked(postID uuid.UUID) bool {
	if v.IsAnonymous() {
		return false
	}
	for _, id := range v.BookmarkedPosts {
		if id == postID {
			return true
		}
	}
	return false
}

// PostView is a post annotated for a particular viewer.
type PostView struct {
	*Post
	UserVote     *string `json:"userVote"`
	IsBookmarked bool    `json:"isBookmarked"`
}
