package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationReply   = "reply"
)

// NotificationPageSize is the fixed page size for notification listings
const NotificationPageSize = 10

// Notification represents a fan-out record (MongoDB). For a given
// (ActorID, PostID) pair at most one live like-type notification exists;
// liking and unliking toggles its existence.
type Notification struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Type         string              `json:"type" bson:"type"` // like, comment, reply
	PostID       primitive.ObjectID  `json:"post_id" bson:"post_id"`
	RecipientID  string              `json:"notification_for" bson:"notification_for"`
	ActorID      string              `json:"user" bson:"user"`
	CommentID    *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	RepliedOnID  *primitive.ObjectID `json:"replied_on_comment,omitempty" bson:"replied_on_comment,omitempty"`
	ReplyID      *primitive.ObjectID `json:"reply,omitempty" bson:"reply,omitempty"` // set once the recipient answers back
	Seen         bool                `json:"seen" bson:"seen"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
}

// ListNotificationsRequest pages through a recipient's notifications.
// DeletedDocCount is the caller-tracked number of previously fetched items
// that have since been deleted; it shrinks the skip so the window does not
// re-skip items that shifted forward.
type ListNotificationsRequest struct {
	Page            int    `json:"page" validate:"required,min=1"`
	Filter          string `json:"filter" validate:"required,oneof=all like comment reply"`
	DeletedDocCount int64  `json:"deletedDocCount" validate:"min=0"`
}

// CountNotificationsRequest counts a recipient's notifications by filter
type CountNotificationsRequest struct {
	Filter string `json:"filter" validate:"required,oneof=all like comment reply"`
}

// ToggleLikeRequest flips the caller's like state on a post
type ToggleLikeRequest struct {
	CurrentlyLiked bool `json:"currently_liked"`
}

// NotificationView is a listed notification with its references denormalized
// the way the boundary renders them.
type NotificationView struct {
	Notification
	PostTitle        string      `json:"post_title"`
	Actor            UserCompact `json:"actor"`
	CommentText      string      `json:"comment_text,omitempty"`
	RepliedOnComment string      `json:"replied_on_comment_text,omitempty"`
	ReplyText        string      `json:"reply_text,omitempty"`
}
