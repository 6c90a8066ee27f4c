package models

// VoteDirection represents the direction of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// View-model vote labels as rendered to clients.
const (
	UserVoteUp   = "upvote"
	UserVoteDown = "downvote"
)

// Label maps a direction to its client-facing value.
func (d VoteDirection) Label() string {
	if d == VoteDown {
		return UserVoteDown
	}
	return UserVoteUp
}

// VoteResult is the outcome of a vote operation on a post.
// UserVote is nil when the caller's vote was retracted.
type VoteResult struct {
	Upvotes   int     `json:"upvotes"`
	Downvotes int     `json:"downvotes"`
	UserVote  *string `json:"userVote"`
}
