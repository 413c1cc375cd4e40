package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentPageSize is the fixed page size for comment and reply listings
const CommentPageSize = 5

// commentSort orders newest-first with ties broken by id descending, so
// pages stay stable for equal timestamps.
var commentSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// CommentRepository defines the interface for comment-tree persistence
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	PushChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	PullChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	ListRootComments(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	CountRootsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment inserts a new comment document
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by its hex id
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", models.ErrValidation)
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// PushChild appends a child id to a parent's children array. A single
// atomic $push, never a read-modify-write of the whole array, so concurrent
// replies to the same parent cannot lose updates.
func (r *MongoCommentRepository) PushChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"children": childID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s: %w", parentID.Hex(), models.ErrNotFound)
	}
	return nil
}

// PullChild removes a child id from a parent's children array. A missing
// parent is not an error: during a cascade the parent may already be gone.
func (r *MongoCommentRepository) PullChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID},
		bson.M{"$pull": bson.M{"children": childID}})
	return err
}

// ListRootComments retrieves a page of a post's root comments, newest first
func (r *MongoCommentRepository) ListRootComments(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	filter := bson.M{"post_id": postID, "is_reply": false}
	return r.findComments(ctx, filter, skip, limit)
}

// ListReplies retrieves a page of a comment's direct children, newest first
func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	filter := bson.M{"parent_id": parentID}
	return r.findComments(ctx, filter, skip, limit)
}

func (r *MongoCommentRepository) findComments(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(commentSort)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment document and returns it
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// DeleteCommentsByPost removes every comment of a post and reports how many
func (r *MongoCommentRepository) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByPost counts the live comments of a post
func (r *MongoCommentRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
}

// CountRootsByPost counts the live root comments of a post
func (r *MongoCommentRepository) CountRootsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"post_id": postID, "is_reply": false})
}
