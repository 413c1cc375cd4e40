package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents one node of a post's comment tree (MongoDB).
// Invariants: ParentID == nil exactly when IsReply is false, and Children
// holds exactly the ids of the comments whose ParentID references this one,
// in insertion order.
type Comment struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	PostID       primitive.ObjectID   `json:"post_id" bson:"post_id"`
	PostAuthorID string               `json:"post_author_id" bson:"post_author_id"` // denormalized for notification routing
	AuthorID     string               `json:"author_id" bson:"author_id"`           // UID of the commenter
	Text         string               `json:"text" bson:"text"`
	ParentID     *primitive.ObjectID  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	IsReply      bool                 `json:"is_reply" bson:"is_reply"`
	Children     []primitive.ObjectID `json:"child_ids" bson:"children"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
}

// AddCommentRequest creates a root comment, or a reply when ParentID is set.
// OriginatingNotificationID is the reply action of a notification: when
// present, the created reply is linked back onto that notification.
type AddCommentRequest struct {
	PostID                    string `json:"post_id" validate:"required"`
	PostAuthorID              string `json:"post_author_id" validate:"required"`
	Text                      string `json:"text" validate:"required,min=1,max=2000"`
	ParentID                  string `json:"parent_id,omitempty"`
	OriginatingNotificationID string `json:"originating_notification_id,omitempty"`
}

// AddCommentResponse is the created-comment shape returned to the boundary
type AddCommentResponse struct {
	CommentID string               `json:"comment_id"`
	Text      string               `json:"text"`
	CreatedAt time.Time            `json:"created_at"`
	AuthorID  string               `json:"author_id"`
	ChildIDs  []primitive.ObjectID `json:"child_ids"`
}

// ListCommentsRequest pages through a post's root comments
type ListCommentsRequest struct {
	PostID string `json:"post_id" validate:"required"`
	Skip   int64  `json:"skip" validate:"min=0"`
}

// ListRepliesRequest pages through a comment's direct children
type ListRepliesRequest struct {
	ParentID string `json:"parent_id" validate:"required"`
	Skip     int64  `json:"skip" validate:"min=0"`
}

// CommentView is a listed comment with its author denormalized
type CommentView struct {
	Comment
	CommentedBy UserCompact `json:"commented_by"`
}
