package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryCommentRepository_PushChildConcurrent(t *testing.T) {
	repo := NewMemoryCommentRepository()
	ctx := context.Background()

	parent := &models.Comment{PostID: primitive.NewObjectID(), Text: "parent"}
	if err := repo.CreateComment(ctx, parent); err != nil {
		t.Fatalf("create: %v", err)
	}

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.PushChild(ctx, parent.ID, primitive.NewObjectID()); err != nil {
				t.Errorf("push child: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := repo.GetCommentByID(ctx, parent.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Children) != writers {
		t.Fatalf("expected %d children, got %d: concurrent appends were lost", writers, len(stored.Children))
	}
}

func TestMemoryCommentRepository_ListOrder(t *testing.T) {
	repo := NewMemoryCommentRepository()
	ctx := context.Background()
	postID := primitive.NewObjectID()

	texts := []string{"oldest", "middle", "newest"}
	for _, text := range texts {
		if err := repo.CreateComment(ctx, &models.Comment{PostID: postID, Text: text}); err != nil {
			t.Fatalf("create: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	roots, err := repo.ListRootComments(ctx, postID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roots) != 3 {
		t.Fatalf("expected 3, got %d", len(roots))
	}
	for i, want := range []string{"newest", "middle", "oldest"} {
		if roots[i].Text != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, roots[i].Text)
		}
	}
}

func TestMemoryCommentRepository_ListOrder_EqualTimestamps(t *testing.T) {
	repo := NewMemoryCommentRepository()
	ctx := context.Background()
	postID := primitive.NewObjectID()

	// identical created_at falls back to the id, descending, so a page
	// boundary never straddles an ambiguous order
	var ids []primitive.ObjectID
	now := time.Now()
	for i := 0; i < 4; i++ {
		c := &models.Comment{PostID: postID, Text: "same instant"}
		if err := repo.CreateComment(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, c.ID)
	}
	repo.mu.Lock()
	for _, id := range ids {
		repo.comments[id].CreatedAt = now
	}
	repo.mu.Unlock()

	roots, err := repo.ListRootComments(ctx, postID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(roots); i++ {
		if roots[i-1].ID.Hex() < roots[i].ID.Hex() {
			t.Fatalf("expected id-descending order, got %s before %s", roots[i-1].ID.Hex(), roots[i].ID.Hex())
		}
	}
}

func TestMemoryCommentRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryCommentRepository()
	ctx := context.Background()

	comment := &models.Comment{PostID: primitive.NewObjectID(), Text: "original"}
	if err := repo.CreateComment(ctx, comment); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetCommentByID(ctx, comment.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Text = "mutated"
	got.Children = append(got.Children, primitive.NewObjectID())

	again, err := repo.GetCommentByID(ctx, comment.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Text != "original" || len(again.Children) != 0 {
		t.Fatal("stored comment must not be reachable through returned values")
	}
}

func TestMemoryCommentRepository_DeleteReturnsDocument(t *testing.T) {
	repo := NewMemoryCommentRepository()
	ctx := context.Background()

	comment := &models.Comment{PostID: primitive.NewObjectID(), Text: "doomed"}
	if err := repo.CreateComment(ctx, comment); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := repo.DeleteComment(ctx, comment.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Text != "doomed" {
		t.Fatalf("expected the removed document back, got %q", deleted.Text)
	}

	if _, err := repo.DeleteComment(ctx, comment.ID); err == nil {
		t.Fatal("second delete must report not found")
	}
}
