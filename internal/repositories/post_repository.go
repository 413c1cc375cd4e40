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

// PostSearch selects posts the way the original search endpoints do: tag
// match wins over title substring, which wins over author UID.
type PostSearch struct {
	Tag    string
	Query  string
	Author string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetLatestPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	GetTrendingPosts(ctx context.Context, limit int64) ([]models.Post, error)
	SearchPosts(ctx context.Context, q PostSearch, skip, limit int64) ([]models.Post, error)
	CountSearchPosts(ctx context.Context, q PostSearch) (int64, error)
	GetPostsByAuthor(ctx context.Context, authorUID string, skip, limit int64) ([]models.Post, error)
	AdjustActivity(ctx context.Context, id string, delta models.ActivityDelta) error
	PushCommentRef(ctx context.Context, id string, commentID primitive.ObjectID) error
	PullCommentRef(ctx context.Context, id string, commentID primitive.ObjectID) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func postObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid post ID format: %w", models.ErrValidation)
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.PublishedAt = time.Now()
	post.UpdatedAt = post.PublishedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := postObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// GetLatestPosts retrieves published posts newest-first with pagination
func (r *MongoPostRepository) GetLatestPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "published_at", Value: -1}})
	return r.findPosts(ctx, bson.M{}, findOptions)
}

// CountPosts returns the total number of published posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// GetTrendingPosts retrieves the most read and liked posts
func (r *MongoPostRepository) GetTrendingPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{
		{Key: "activity.total_reads", Value: -1},
		{Key: "activity.total_likes", Value: -1},
		{Key: "published_at", Value: -1},
	})
	return r.findPosts(ctx, bson.M{}, findOptions)
}

func searchFilter(q PostSearch) bson.M {
	if q.Tag != "" {
		return bson.M{"tags": q.Tag}
	}
	if q.Query != "" {
		return bson.M{"title": primitive.Regex{Pattern: q.Query, Options: "i"}}
	}
	if q.Author != "" {
		return bson.M{"author_id": q.Author}
	}
	return bson.M{}
}

// SearchPosts retrieves posts matching a tag, title substring or author
func (r *MongoPostRepository) SearchPosts(ctx context.Context, q PostSearch, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "published_at", Value: -1}})
	return r.findPosts(ctx, searchFilter(q), findOptions)
}

// CountSearchPosts counts posts matching a search
func (r *MongoPostRepository) CountSearchPosts(ctx context.Context, q PostSearch) (int64, error) {
	return r.collection.CountDocuments(ctx, searchFilter(q))
}

// GetPostsByAuthor retrieves posts written by a specific user
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorUID string, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "published_at", Value: -1}})
	return r.findPosts(ctx, bson.M{"author_id": authorUID}, findOptions)
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	var posts []models.Post
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AdjustActivity applies a counter delta to a post as a single $inc update.
// Every counter mutation in the system goes through this method.
func (r *MongoPostRepository) AdjustActivity(ctx context.Context, id string, delta models.ActivityDelta) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}

	inc := bson.M{}
	if delta.TotalLikes != 0 {
		inc["activity.total_likes"] = delta.TotalLikes
	}
	if delta.TotalComments != 0 {
		inc["activity.total_comments"] = delta.TotalComments
	}
	if delta.TotalParentComments != 0 {
		inc["activity.total_parent_comments"] = delta.TotalParentComments
	}
	if delta.TotalReads != 0 {
		inc["activity.total_reads"] = delta.TotalReads
	}
	if len(inc) == 0 {
		return nil
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": inc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// PushCommentRef appends a comment id to the post's ordered comment list
func (r *MongoPostRepository) PushCommentRef(ctx context.Context, id string, commentID primitive.ObjectID) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"comments": commentID}})
	return err
}

// PullCommentRef removes a comment id from the post's comment list
func (r *MongoPostRepository) PullCommentRef(ctx context.Context, id string, commentID primitive.ObjectID) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$pull": bson.M{"comments": commentID}})
	return err
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return nil
}
