package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/ToseebNadaf/TaskStream/internal/repositories"
	"github.com/ToseebNadaf/TaskStream/validators"
	"github.com/labstack/echo/v4"
)

// testEnv wires handlers to in-memory repositories
type testEnv struct {
	e             *echo.Echo
	posts         *repositories.MemoryPostRepository
	comments      *repositories.MemoryCommentRepository
	notifications *repositories.MemoryNotificationRepository
	users         *repositories.MemoryUserRepository

	commentHandler      *CommentHandler
	likeHandler         *LikeHandler
	notificationHandler *NotificationHandler
	postHandler         *PostHandler
}

func newTestEnv() *testEnv {
	e := echo.New()
	e.Validator = validators.NewValidator()

	posts := repositories.NewMemoryPostRepository()
	comments := repositories.NewMemoryCommentRepository()
	notifications := repositories.NewMemoryNotificationRepository()
	users := repositories.NewMemoryUserRepository()

	return &testEnv{
		e:             e,
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		users:         users,

		commentHandler:      NewCommentHandler(comments, posts, notifications, users),
		likeHandler:         NewLikeHandler(posts, notifications),
		notificationHandler: NewNotificationHandler(notifications, posts, comments, users),
		postHandler:         NewPostHandler(posts, users, comments, notifications),
	}
}

// request builds an echo context for a JSON request from the given caller
func (env *testEnv) request(method, target, body, callerUID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if callerUID != "" {
		c.Set("userUID", callerUID)
	}
	return c, rec
}

func (env *testEnv) addUser(t *testing.T, uid, fullname, username string) {
	t.Helper()
	err := env.users.CreateUser(&models.User{
		UID:      uid,
		Fullname: fullname,
		Username: username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", uid, err)
	}
}

func (env *testEnv) addPost(t *testing.T, authorUID, title string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorUID, Title: title}
	if err := env.posts.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func (env *testEnv) getPost(t *testing.T, id string) *models.Post {
	t.Helper()
	post, err := env.posts.GetPostByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get post %s: %v", id, err)
	}
	return post
}

// addComment drives the AddComment endpoint and returns the response
func (env *testEnv) addComment(t *testing.T, callerUID string, req models.AddCommentRequest) models.AddCommentResponse {
	t.Helper()
	body, _ := json.Marshal(req)
	c, rec := env.request(http.MethodPost, "/api/v1/comments", string(body), callerUID)
	if err := env.commentHandler.AddComment(c); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("add comment: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.AddCommentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode add comment response: %v", err)
	}
	return resp
}

func (env *testEnv) getComment(t *testing.T, id string) *models.Comment {
	t.Helper()
	comment, err := env.comments.GetCommentByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get comment %s: %v", id, err)
	}
	return comment
}

// httpStatus extracts the status code from a handler error
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
