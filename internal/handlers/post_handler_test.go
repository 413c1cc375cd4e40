package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "author-uid", "Author", "author")

	body := `{"title":"Hello","description":"first post","content":"body","tags":["go","blog"]}`
	c, rec := env.request(http.MethodPost, "/api/v1/posts", body, "author-uid")
	if err := env.postHandler.CreatePost(c); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var post models.Post
	if err := json.NewDecoder(rec.Body).Decode(&post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.ID.IsZero() {
		t.Fatal("expected an assigned id")
	}
	if post.AuthorID != "author-uid" {
		t.Fatalf("expected author-uid, got %q", post.AuthorID)
	}
	if post.Activity.TotalLikes != 0 || post.Activity.TotalComments != 0 {
		t.Fatal("a new post starts with zeroed counters")
	}
}

func TestCreatePost_MissingTitle(t *testing.T) {
	env := newTestEnv()

	c, _ := env.request(http.MethodPost, "/api/v1/posts", `{"content":"body"}`, "author-uid")
	err := env.postHandler.CreatePost(c)
	if status := httpStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetPost_CountsRead(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "author-uid", "Author", "author")
	post := env.addPost(t, "author-uid", "X")

	c, rec := env.request(http.MethodGet, "/api/v1/posts/"+post.ID.Hex(), "", "")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	if err := env.postHandler.GetPost(c); err != nil {
		t.Fatalf("get post: %v", err)
	}

	var view models.PostView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Author.Username != "author" {
		t.Fatalf("expected enriched author, got %q", view.Author.Username)
	}

	// the read is counted after the response
	deadline := time.Now().Add(2 * time.Second)
	for env.getPost(t, post.ID.Hex()).Activity.TotalReads != 1 {
		if time.Now().After(deadline) {
			t.Fatal("read was never counted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetLatestPosts_Pagination(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 7; i++ {
		env.addPost(t, "author-uid", "P"+strconv.Itoa(i))
		time.Sleep(time.Millisecond)
	}

	page := func(n int) []models.PostView {
		body := `{"page":` + strconv.Itoa(n) + `}`
		c, rec := env.request(http.MethodPost, "/api/v1/posts/latest", body, "")
		if err := env.postHandler.GetLatestPosts(c); err != nil {
			t.Fatalf("latest: %v", err)
		}
		var resp struct {
			Posts []models.PostView `json:"posts"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp.Posts
	}

	first := page(1)
	if len(first) != 5 {
		t.Fatalf("expected a page of 5, got %d", len(first))
	}
	if first[0].Title != "P6" {
		t.Fatalf("expected newest first, got %q", first[0].Title)
	}

	second := page(2)
	if len(second) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(second))
	}
	if second[1].Title != "P0" {
		t.Fatalf("expected the oldest last, got %q", second[1].Title)
	}
}

func TestSearchPosts_ByTag(t *testing.T) {
	env := newTestEnv()

	tagged := &models.Post{AuthorID: "author-uid", Title: "tagged", Tags: []string{"go"}}
	if err := env.posts.CreatePost(context.Background(), tagged); err != nil {
		t.Fatalf("create: %v", err)
	}
	env.addPost(t, "author-uid", "untagged")

	c, rec := env.request(http.MethodPost, "/api/v1/posts/search", `{"tag":"go","page":1}`, "")
	if err := env.postHandler.SearchPosts(c); err != nil {
		t.Fatalf("search: %v", err)
	}
	var resp struct {
		Posts []models.PostView `json:"posts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].Title != "tagged" {
		t.Fatalf("expected only the tagged post, got %v", resp.Posts)
	}
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "author-uid", "X")
	env.addComment(t, "commenter-uid", models.AddCommentRequest{
		PostID: post.ID.Hex(), PostAuthorID: "author-uid", Text: "hi",
	})

	// only the author may delete
	c, _ := env.request(http.MethodDelete, "/api/v1/posts/"+post.ID.Hex(), "", "stranger-uid")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	err := env.postHandler.DeletePost(c)
	if status := httpStatus(t, err); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	c, rec := env.request(http.MethodDelete, "/api/v1/posts/"+post.ID.Hex(), "", "author-uid")
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())
	if err := env.postHandler.DeletePost(c); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if _, err := env.posts.GetPostByID(context.Background(), post.ID.Hex()); err == nil {
		t.Fatal("post must be gone")
	}

	// dependent records are cleaned up after the response
	deadline := time.Now().Add(2 * time.Second)
	for {
		comments, _ := env.comments.CountByPost(context.Background(), post.ID)
		if comments == 0 && len(env.notifications.All()) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dependent records were never cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
