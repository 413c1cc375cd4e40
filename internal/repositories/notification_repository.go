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

// NotificationRepository defines the interface for notification records
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	LikeExists(ctx context.Context, postID primitive.ObjectID, actorUID string) (bool, error)
	DeleteLike(ctx context.Context, postID primitive.ObjectID, actorUID string) error
	SetReply(ctx context.Context, notificationID string, replyID primitive.ObjectID) error
	DeleteByComment(ctx context.Context, commentID primitive.ObjectID) (int64, error)
	ClearReplyRef(ctx context.Context, replyID primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	List(ctx context.Context, recipientUID, filter string, skip, limit int64) ([]models.Notification, error)
	MarkSeen(ctx context.Context, ids []primitive.ObjectID) error
	HasUnseen(ctx context.Context, recipientUID string) (bool, error)
	Count(ctx context.Context, recipientUID, filter string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification inserts a new notification record
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// LikeExists reports whether a live like notification exists for the
// (actor, post) pair. This existence check is the system's only record of
// like state.
func (r *MongoNotificationRepository) LikeExists(ctx context.Context, postID primitive.ObjectID, actorUID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"type":    models.NotificationLike,
		"post_id": postID,
		"user":    actorUID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteLike removes the like notification for the (actor, post) pair
func (r *MongoNotificationRepository) DeleteLike(ctx context.Context, postID primitive.ObjectID, actorUID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{
		"type":    models.NotificationLike,
		"post_id": postID,
		"user":    actorUID,
	})
	return err
}

// SetReply stores the back-pointer to the reply the recipient made through
// this notification.
func (r *MongoNotificationRepository) SetReply(ctx context.Context, notificationID string, replyID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", models.ErrValidation)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$set": bson.M{"reply": replyID}})
	return err
}

// DeleteByComment removes every notification caused by a comment
func (r *MongoNotificationRepository) DeleteByComment(ctx context.Context, commentID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"comment": commentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearReplyRef unsets the reply back-pointer on any notification pointing
// at the deleted reply; the notification itself survives.
func (r *MongoNotificationRepository) ClearReplyRef(ctx context.Context, replyID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"reply": replyID},
		bson.M{"$unset": bson.M{"reply": 1}})
	return err
}

// DeleteByPost removes every notification attached to a post
func (r *MongoNotificationRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func notificationFilter(recipientUID, filter string) bson.M {
	query := bson.M{
		"notification_for": recipientUID,
		"user":             bson.M{"$ne": recipientUID},
	}
	if filter != "" && filter != "all" {
		query["type"] = filter
	}
	return query
}

// List retrieves a window of a recipient's notifications, newest first.
// Self-triggered notifications are excluded.
func (r *MongoNotificationRepository) List(ctx context.Context, recipientUID, filter string, skip, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, notificationFilter(recipientUID, filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkSeen marks exactly the given notifications as seen
func (r *MongoNotificationRepository) MarkSeen(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"seen": true}})
	return err
}

// HasUnseen reports whether the recipient has any unseen notification not
// triggered by themselves.
func (r *MongoNotificationRepository) HasUnseen(ctx context.Context, recipientUID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"notification_for": recipientUID,
		"seen":             false,
		"user":             bson.M{"$ne": recipientUID},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts a recipient's notifications under a filter
func (r *MongoNotificationRepository) Count(ctx context.Context, recipientUID, filter string) (int64, error) {
	return r.collection.CountDocuments(ctx, notificationFilter(recipientUID, filter))
}
