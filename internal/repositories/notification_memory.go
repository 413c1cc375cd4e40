package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryNotificationRepository is a mutex-guarded NotificationRepository
// used by the test suite.
type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications map[primitive.ObjectID]*models.Notification
}

// NewMemoryNotificationRepository creates an empty in-memory notification store
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[primitive.ObjectID]*models.Notification)}
}

func (r *MemoryNotificationRepository) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	stored := *notification
	r.notifications[notification.ID] = &stored
	return nil
}

func (r *MemoryNotificationRepository) LikeExists(_ context.Context, postID primitive.ObjectID, actorUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.Type == models.NotificationLike && n.PostID == postID && n.ActorID == actorUID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryNotificationRepository) DeleteLike(_ context.Context, postID primitive.ObjectID, actorUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.notifications {
		if n.Type == models.NotificationLike && n.PostID == postID && n.ActorID == actorUID {
			delete(r.notifications, id)
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) SetReply(_ context.Context, notificationID string, replyID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.notifications[objID]; ok {
		rid := replyID
		n.ReplyID = &rid
	}
	return nil
}

func (r *MemoryNotificationRepository) DeleteByComment(_ context.Context, commentID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, n := range r.notifications {
		if n.CommentID != nil && *n.CommentID == commentID {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryNotificationRepository) ClearReplyRef(_ context.Context, replyID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ReplyID != nil && *n.ReplyID == replyID {
			n.ReplyID = nil
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, n := range r.notifications {
		if n.PostID == postID {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func matchesFilter(n *models.Notification, recipientUID, filter string) bool {
	if n.RecipientID != recipientUID || n.ActorID == recipientUID {
		return false
	}
	if filter != "" && filter != "all" && n.Type != filter {
		return false
	}
	return true
}

func (r *MemoryNotificationRepository) List(_ context.Context, recipientUID, filter string, skip, limit int64) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Notification
	for _, n := range r.notifications {
		if matchesFilter(n, recipientUID, filter) {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []models.Notification{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	page := make([]models.Notification, 0, len(matched))
	for _, n := range matched {
		page = append(page, *n)
	}
	return page, nil
}

func (r *MemoryNotificationRepository) MarkSeen(_ context.Context, ids []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if n, ok := r.notifications[id]; ok {
			n.Seen = true
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) HasUnseen(_ context.Context, recipientUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.RecipientID == recipientUID && !n.Seen && n.ActorID != recipientUID {
			return true, nil
		}
	}
	return false, nil
}

// All returns every stored notification, in no particular order. Test
// helper; the Mongo implementation has no equivalent.
func (r *MemoryNotificationRepository) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, *n)
	}
	return out
}

func (r *MemoryNotificationRepository) Count(_ context.Context, recipientUID, filter string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, n := range r.notifications {
		if matchesFilter(n, recipientUID, filter) {
			count++
		}
	}
	return count, nil
}
