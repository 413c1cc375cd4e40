package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPostRepository is a mutex-guarded PostRepository used by the test
// suite. Counter deltas apply under the lock, matching Mongo's atomic $inc.
type MemoryPostRepository struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

// NewMemoryPostRepository creates an empty in-memory post store
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[string]*models.Post)}
}

func (r *MemoryPostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = primitive.NewObjectID()
	post.PublishedAt = time.Now()
	post.UpdatedAt = post.PublishedAt
	stored := *post
	stored.Comments = append([]primitive.ObjectID{}, post.Comments...)
	r.posts[post.ID.Hex()] = &stored
	return nil
}

func (r *MemoryPostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", models.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return copyPost(stored), nil
}

func (r *MemoryPostRepository) GetLatestPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	return r.list(func(*models.Post) bool { return true }, byPublishedAt, skip, limit), nil
}

func (r *MemoryPostRepository) CountPosts(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *MemoryPostRepository) GetTrendingPosts(_ context.Context, limit int64) ([]models.Post, error) {
	return r.list(func(*models.Post) bool { return true }, byTrending, 0, limit), nil
}

func (r *MemoryPostRepository) SearchPosts(_ context.Context, q PostSearch, skip, limit int64) ([]models.Post, error) {
	return r.list(searchMatch(q), byPublishedAt, skip, limit), nil
}

func (r *MemoryPostRepository) CountSearchPosts(_ context.Context, q PostSearch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match := searchMatch(q)
	var count int64
	for _, p := range r.posts {
		if match(p) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryPostRepository) GetPostsByAuthor(_ context.Context, authorUID string, skip, limit int64) ([]models.Post, error) {
	return r.list(func(p *models.Post) bool { return p.AuthorID == authorUID }, byPublishedAt, skip, limit), nil
}

func searchMatch(q PostSearch) func(*models.Post) bool {
	switch {
	case q.Tag != "":
		return func(p *models.Post) bool {
			for _, t := range p.Tags {
				if t == q.Tag {
					return true
				}
			}
			return false
		}
	case q.Query != "":
		needle := strings.ToLower(q.Query)
		return func(p *models.Post) bool {
			return strings.Contains(strings.ToLower(p.Title), needle)
		}
	case q.Author != "":
		return func(p *models.Post) bool { return p.AuthorID == q.Author }
	default:
		return func(*models.Post) bool { return true }
	}
}

func byPublishedAt(a, b *models.Post) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func byTrending(a, b *models.Post) bool {
	if a.Activity.TotalReads != b.Activity.TotalReads {
		return a.Activity.TotalReads > b.Activity.TotalReads
	}
	if a.Activity.TotalLikes != b.Activity.TotalLikes {
		return a.Activity.TotalLikes > b.Activity.TotalLikes
	}
	return a.PublishedAt.After(b.PublishedAt)
}

func (r *MemoryPostRepository) list(match func(*models.Post) bool, less func(a, b *models.Post) bool, skip, limit int64) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Post
	for _, p := range r.posts {
		if match(p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []models.Post{}
	}
	matched = matched[skip:]
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	page := make([]models.Post, 0, len(matched))
	for _, p := range matched {
		page = append(page, *copyPost(p))
	}
	return page
}

func (r *MemoryPostRepository) AdjustActivity(_ context.Context, id string, delta models.ActivityDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	stored.Activity.TotalLikes += delta.TotalLikes
	stored.Activity.TotalComments += delta.TotalComments
	stored.Activity.TotalParentComments += delta.TotalParentComments
	stored.Activity.TotalReads += delta.TotalReads
	return nil
}

func (r *MemoryPostRepository) PushCommentRef(_ context.Context, id string, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	stored.Comments = append(stored.Comments, commentID)
	return nil
}

func (r *MemoryPostRepository) PullCommentRef(_ context.Context, id string, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return nil
	}
	kept := stored.Comments[:0]
	for _, cid := range stored.Comments {
		if cid != commentID {
			kept = append(kept, cid)
		}
	}
	stored.Comments = kept
	return nil
}

func (r *MemoryPostRepository) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Comments = append([]primitive.ObjectID{}, p.Comments...)
	cp.Tags = append([]string{}, p.Tags...)
	return &cp
}
