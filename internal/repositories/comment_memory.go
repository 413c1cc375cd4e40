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

// MemoryCommentRepository is a mutex-guarded CommentRepository used by the
// test suite. It mirrors the Mongo implementation's semantics, including
// the newest-first, id-descending sort.
type MemoryCommentRepository struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

// NewMemoryCommentRepository creates an empty in-memory comment store
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *MemoryCommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	stored := *comment
	stored.Children = append([]primitive.ObjectID{}, comment.Children...)
	r.comments[comment.ID] = &stored
	return nil
}

func (r *MemoryCommentRepository) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.comments[objID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, models.ErrNotFound)
	}
	return copyComment(stored), nil
}

func (r *MemoryCommentRepository) PushChild(_ context.Context, parentID, childID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.comments[parentID]
	if !ok {
		return fmt.Errorf("comment %s: %w", parentID.Hex(), models.ErrNotFound)
	}
	parent.Children = append(parent.Children, childID)
	return nil
}

func (r *MemoryCommentRepository) PullChild(_ context.Context, parentID, childID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.comments[parentID]
	if !ok {
		return nil
	}
	kept := parent.Children[:0]
	for _, id := range parent.Children {
		if id != childID {
			kept = append(kept, id)
		}
	}
	parent.Children = kept
	return nil
}

func (r *MemoryCommentRepository) ListRootComments(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	return r.list(func(c *models.Comment) bool {
		return c.PostID == postID && !c.IsReply
	}, skip, limit), nil
}

func (r *MemoryCommentRepository) ListReplies(_ context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	return r.list(func(c *models.Comment) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}, skip, limit), nil
}

func (r *MemoryCommentRepository) list(match func(*models.Comment) bool, skip, limit int64) []models.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Comment
	for _, c := range r.comments {
		if match(c) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	return pageComments(matched, skip, limit)
}

func pageComments(matched []*models.Comment, skip, limit int64) []models.Comment {
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []models.Comment{}
	}
	matched = matched[skip:]
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	page := make([]models.Comment, 0, len(matched))
	for _, c := range matched {
		page = append(page, *copyComment(c))
	}
	return page
}

func (r *MemoryCommentRepository) DeleteComment(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id.Hex(), models.ErrNotFound)
	}
	delete(r.comments, id)
	return copyComment(stored), nil
}

func (r *MemoryCommentRepository) DeleteCommentsByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryCommentRepository) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, c := range r.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryCommentRepository) CountRootsByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, c := range r.comments {
		if c.PostID == postID && !c.IsReply {
			count++
		}
	}
	return count, nil
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	cp.Children = append([]primitive.ObjectID{}, c.Children...)
	if c.ParentID != nil {
		pid := *c.ParentID
		cp.ParentID = &pid
	}
	return &cp
}
