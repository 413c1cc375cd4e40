package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (env *testEnv) seedNotification(t *testing.T, typ, recipientUID, actorUID string, postID primitive.ObjectID, commentID *primitive.ObjectID) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Type:        typ,
		PostID:      postID,
		RecipientID: recipientUID,
		ActorID:     actorUID,
		CommentID:   commentID,
	}
	if err := env.notifications.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func (env *testEnv) listNotifications(t *testing.T, callerUID string, page int, filter string, deletedDocCount int64) []models.NotificationView {
	t.Helper()
	body := `{"page":` + strconv.Itoa(page) + `,"filter":"` + filter + `","deletedDocCount":` + strconv.FormatInt(deletedDocCount, 10) + `}`
	c, rec := env.request(http.MethodPost, "/api/v1/notifications", body, callerUID)
	if err := env.notificationHandler.GetNotifications(c); err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	var resp struct {
		Notifications []models.NotificationView `json:"notifications"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Notifications
}

func TestGetNotifications_PaginationAfterDeletes(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "author-uid", "X")

	// 22 comment notifications, each tagged by an index through its comment id
	indexOf := make(map[string]int)
	commentIDs := make([]primitive.ObjectID, 22)
	for i := 0; i < 22; i++ {
		cid := primitive.NewObjectID()
		commentIDs[i] = cid
		env.seedNotification(t, models.NotificationComment, "me", "other", post.ID, &cid)
		indexOf[cid.Hex()] = i
	}

	first := env.listNotifications(t, "me", 1, "all", 0)
	if len(first) != models.NotificationPageSize {
		t.Fatalf("expected a page of %d, got %d", models.NotificationPageSize, len(first))
	}
	if indexOf[first[0].CommentID.Hex()] != 21 || indexOf[first[9].CommentID.Hex()] != 12 {
		t.Fatalf("expected window 21..12, got %d..%d",
			indexOf[first[0].CommentID.Hex()], indexOf[first[9].CommentID.Hex()])
	}

	// two of the fetched notifications disappear before the next page
	for _, i := range []int{21, 20} {
		if _, err := env.notifications.DeleteByComment(context.Background(), commentIDs[i]); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}

	// deletedDocCount shrinks the skip, so page 2 starts right where the
	// first window left off in the shifted list: no repeats, no gaps
	second := env.listNotifications(t, "me", 2, "all", 2)
	if len(second) != models.NotificationPageSize {
		t.Fatalf("expected a page of %d, got %d", models.NotificationPageSize, len(second))
	}
	if indexOf[second[0].CommentID.Hex()] != 11 || indexOf[second[9].CommentID.Hex()] != 2 {
		t.Fatalf("expected window 11..2, got %d..%d",
			indexOf[second[0].CommentID.Hex()], indexOf[second[9].CommentID.Hex()])
	}

	seen := make(map[int]bool)
	for _, v := range append(first, second...) {
		i := indexOf[v.CommentID.Hex()]
		if seen[i] {
			t.Fatalf("notification %d delivered twice", i)
		}
		seen[i] = true
	}
}

func TestGetNotifications_MarksOnlyWindowSeen(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "author-uid", "X")

	for i := 0; i < 15; i++ {
		cid := primitive.NewObjectID()
		env.seedNotification(t, models.NotificationComment, "me", "other", post.ID, &cid)
	}

	window := env.listNotifications(t, "me", 1, "all", 0)
	windowIDs := make(map[primitive.ObjectID]bool)
	for _, v := range window {
		windowIDs[v.ID] = true
	}

	var seenCount, unseenCount int
	for _, n := range env.notifications.All() {
		switch {
		case n.Seen && windowIDs[n.ID]:
			seenCount++
		case !n.Seen && !windowIDs[n.ID]:
			unseenCount++
		default:
			t.Fatalf("notification %s: seen=%v but in window=%v", n.ID.Hex(), n.Seen, windowIDs[n.ID])
		}
	}
	if seenCount != 10 || unseenCount != 5 {
		t.Fatalf("expected 10 seen and 5 unseen, got %d and %d", seenCount, unseenCount)
	}
}

func TestGetNotifications_Filter(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "author-uid", "X")

	env.seedNotification(t, models.NotificationLike, "me", "other", post.ID, nil)
	cid := primitive.NewObjectID()
	env.seedNotification(t, models.NotificationComment, "me", "other", post.ID, &cid)
	env.seedNotification(t, models.NotificationReply, "me", "other", post.ID, &cid)

	for _, tc := range []struct {
		filter string
		want   int
	}{
		{"all", 3},
		{"like", 1},
		{"comment", 1},
		{"reply", 1},
	} {
		got := env.listNotifications(t, "me", 1, tc.filter, 0)
		if len(got) != tc.want {
			t.Fatalf("filter %q: expected %d, got %d", tc.filter, tc.want, len(got))
		}
		if tc.filter != "all" && got[0].Type != tc.filter {
			t.Fatalf("filter %q returned type %q", tc.filter, got[0].Type)
		}
	}
}

func TestGetNotifications_ExcludesSelfTriggered(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "me", "X")

	// the recipient acting on their own post must not see themselves
	env.seedNotification(t, models.NotificationLike, "me", "me", post.ID, nil)
	env.seedNotification(t, models.NotificationLike, "me", "other", post.ID, nil)

	got := env.listNotifications(t, "me", 1, "all", 0)
	if len(got) != 1 {
		t.Fatalf("expected only the foreign notification, got %d", len(got))
	}
	if got[0].ActorID != "other" {
		t.Fatalf("expected actor other, got %q", got[0].ActorID)
	}
}

func TestGetNotifications_InvalidFilter(t *testing.T) {
	env := newTestEnv()

	c, _ := env.request(http.MethodPost, "/api/v1/notifications", `{"page":1,"filter":"bogus"}`, "me")
	err := env.notificationHandler.GetNotifications(c)
	if status := httpStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetNotifications_Enrichment(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "author-uid", "Post Author", "postauthor")
	env.addUser(t, "replier-uid", "Replier", "replier")
	post := env.addPost(t, "author-uid", "How deep does it go")

	root := env.addComment(t, "author-uid", models.AddCommentRequest{
		PostID: post.ID.Hex(), PostAuthorID: "author-uid", Text: "the question",
	})
	env.addComment(t, "replier-uid", models.AddCommentRequest{
		PostID: post.ID.Hex(), PostAuthorID: "author-uid", Text: "the answer", ParentID: root.CommentID,
	})

	got := env.listNotifications(t, "author-uid", 1, "reply", 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 reply notification, got %d", len(got))
	}
	v := got[0]
	if v.PostTitle != "How deep does it go" {
		t.Fatalf("expected the post title, got %q", v.PostTitle)
	}
	if v.Actor.Username != "replier" {
		t.Fatalf("expected actor replier, got %q", v.Actor.Username)
	}
	if v.CommentText != "the answer" {
		t.Fatalf("expected the reply's text, got %q", v.CommentText)
	}
	if v.RepliedOnComment != "the question" {
		t.Fatalf("expected the replied-on text, got %q", v.RepliedOnComment)
	}
}

func TestCheckNewNotification(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "me", "X")

	check := func() bool {
		c, rec := env.request(http.MethodGet, "/api/v1/notifications/new", "", "me")
		if err := env.notificationHandler.CheckNewNotification(c); err != nil {
			t.Fatalf("check: %v", err)
		}
		var resp map[string]bool
		json.NewDecoder(rec.Body).Decode(&resp)
		return resp["new_notification_available"]
	}

	if check() {
		t.Fatal("no notifications yet")
	}

	env.seedNotification(t, models.NotificationLike, "me", "me", post.ID, nil)
	if check() {
		t.Fatal("a self-triggered notification is not new activity")
	}

	env.seedNotification(t, models.NotificationLike, "me", "other", post.ID, nil)
	if !check() {
		t.Fatal("expected unseen foreign notification to be reported")
	}

	env.listNotifications(t, "me", 1, "all", 0)
	if check() {
		t.Fatal("fetching the page marks it seen")
	}
}

func TestCountNotifications(t *testing.T) {
	env := newTestEnv()
	post := env.addPost(t, "author-uid", "X")

	for i := 0; i < 3; i++ {
		env.seedNotification(t, models.NotificationLike, "me", "other", post.ID, nil)
	}
	cid := primitive.NewObjectID()
	env.seedNotification(t, models.NotificationComment, "me", "other", post.ID, &cid)
	env.seedNotification(t, models.NotificationComment, "someone-else", "other", post.ID, &cid)

	count := func(filter string) int64 {
		c, rec := env.request(http.MethodPost, "/api/v1/notifications/count", `{"filter":"`+filter+`"}`, "me")
		if err := env.notificationHandler.CountNotifications(c); err != nil {
			t.Fatalf("count: %v", err)
		}
		var resp map[string]int64
		json.NewDecoder(rec.Body).Decode(&resp)
		return resp["totalDocs"]
	}

	if got := count("all"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := count("like"); got != 3 {
		t.Fatalf("expected 3 likes, got %d", got)
	}
	if got := count("comment"); got != 1 {
		t.Fatalf("expected 1 comment, got %d", got)
	}
	if got := count("reply"); got != 0 {
		t.Fatalf("expected 0 replies, got %d", got)
	}
}
