package forum

import (
	"context"
	"log"

	"mangrove/internal/database"
	"mangrove/internal/models"

	"github.com/google/uuid"
)

// VoteLedger maintains each post's up/down voter-id lists with toggle
// semantics: voting the same direction twice retracts, voting the other
// direction switches. A user's id is a member of at most one list.
type VoteLedger struct {
	store  database.Store
	notify Notifier
}

func NewVoteLedger(store database.Store, notify Notifier) *VoteLedger {
	return &VoteLedger{store: store, notify: orNoop(notify)}
}

// ApplyVote toggles userID's vote on postID in the given direction.
//
// The membership read and the list update are separate store calls, so
// two concurrent votes by the same user are not serialized here; the
// store's set-add and pull primitives are what keep the lists
// duplicate-free and mutually exclusive.
func (l *VoteLedger) ApplyVote(ctx context.Context, postID, userID uuid.UUID, direction models.VoteDirection) (*models.VoteResult, error) {
	post, err := l.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var hasVoted bool
	if direction == models.VoteDown {
		hasVoted = post.HasDownvoted(userID)
	} else {
		hasVoted = post.HasUpvoted(userID)
	}

	var updated *models.Post
	var userVote *string
	if hasVoted {
		// Same direction again: retract.
		updated, err = l.store.RemoveVote(ctx, postID, userID, direction)
	} else {
		// Fresh vote, or a switch; the add also pulls the opposite list.
		updated, err = l.store.AddVote(ctx, postID, userID, direction)
		label := direction.Label()
		userVote = &label
	}
	if err != nil {
		return nil, err
	}

	result := &models.VoteResult{
		Upvotes:   updated.UpvoteCount(),
		Downvotes: updated.DownvoteCount(),
		UserVote:  userVote,
	}

	log.Printf("Vote applied on post %s by user %s: up=%d down=%d", postID, userID, result.Upvotes, result.Downvotes)
	l.notify.VoteChanged(postID, result)

	return result, nil
}
