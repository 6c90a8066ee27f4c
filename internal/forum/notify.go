package forum

import (
	"mangrove/internal/models"

	"github.com/google/uuid"
)

// Notifier receives events the live post pages care about. Implementations
// must not block; delivery is best effort.
type Notifier interface {
	CommentCreated(postID uuid.UUID, comment *models.Comment)
	VoteChanged(postID uuid.UUID, result *models.VoteResult)
}

type noopNotifier struct{}

func (noopNotifier) CommentCreated(uuid.UUID, *models.Comment) {}
func (noopNotifier) VoteChanged(uuid.UUID, *models.VoteResult) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
