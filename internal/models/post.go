package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity holds a post's aggregate counters. Each counter must equal the
// live count of the underlying records at rest; mismatches are logged as
// consistency warnings, never repaired automatically.
type Activity struct {
	TotalLikes          int64 `json:"total_likes" bson:"total_likes"`
	TotalComments       int64 `json:"total_comments" bson:"total_comments"`
	TotalParentComments int64 `json:"total_parent_comments" bson:"total_parent_comments"`
	TotalReads          int64 `json:"total_reads" bson:"total_reads"`
}

// ActivityDelta is the single counter-adjustment record every mutating
// operation goes through. Zero fields are omitted from the $inc document.
type ActivityDelta struct {
	TotalLikes          int64
	TotalComments       int64
	TotalParentComments int64
	TotalReads          int64
}

// Post represents a published post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID    string               `json:"author_id" bson:"author_id"` // UID of the publishing user
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	Content     string               `json:"content,omitempty" bson:"content,omitempty"`
	BannerURL   string               `json:"banner_url,omitempty" bson:"banner_url,omitempty"`
	Tags        []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Comments    []primitive.ObjectID `json:"comments,omitempty" bson:"comments,omitempty"` // ordered comment references
	Activity    Activity             `json:"activity" bson:"activity"`
	PublishedAt time.Time            `json:"published_at" bson:"published_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for publishing a post
type CreatePostRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=200"`
	Content     string   `json:"content,omitempty"`
	BannerURL   string   `json:"banner_url,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// ListLatestPostsRequest pages through published posts, newest first
type ListLatestPostsRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

// SearchPostsRequest searches posts by tag, title substring or author UID.
// Exactly the original matching rules: tag first, then title, then author.
type SearchPostsRequest struct {
	Tag    string `json:"tag,omitempty"`
	Query  string `json:"query,omitempty"`
	Author string `json:"author,omitempty"`
	Page   int    `json:"page" validate:"required,min=1"`
}

// SearchPostsCountRequest mirrors SearchPostsRequest without pagination
type SearchPostsCountRequest struct {
	Tag    string `json:"tag,omitempty"`
	Query  string `json:"query,omitempty"`
	Author string `json:"author,omitempty"`
}

// PostView is a listing item with its author denormalized
type PostView struct {
	Post
	Author UserCompact `json:"author"`
}
