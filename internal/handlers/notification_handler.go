package handlers

import (
	"context"
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/ToseebNadaf/TaskStream/internal/pagination"
	"github.com/ToseebNadaf/TaskStream/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification delivery: filtered, paginated
// listing with unread tracking.
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	postRepository         repositories.PostRepository
	commentRepository      repositories.CommentRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		postRepository:         postRepo,
		commentRepository:      commentRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/notifications", h.GetNotifications)
	g.GET("/notifications/new", h.CheckNewNotification)
	g.POST("/notifications/count", h.CountNotifications)
}

// GetNotifications returns one page of the caller's notifications, newest
// first, and marks exactly the returned window as seen. deletedDocCount is
// the caller-tracked number of previously fetched items that have since been
// deleted; it keeps the window from re-skipping shifted items.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid := callerUID(c)

	var req models.ListNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	skip := pagination.Skip(req.Page, models.NotificationPageSize, req.DeletedDocCount)

	notifications, err := h.notificationRepository.List(ctx, uid, req.Filter, skip, models.NotificationPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views := h.enrichNotifications(ctx, notifications)

	ids := make([]primitive.ObjectID, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	if err := h.notificationRepository.MarkSeen(ctx, ids); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": views})
}

// enrichNotifications denormalizes each notification's references: the post
// title, the actor's display fields and the texts of the involved comments.
// Lookups are best-effort; a reference that no longer resolves renders empty.
func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) []models.NotificationView {
	views := make([]models.NotificationView, len(notifications))
	userCache := make(map[string]models.UserCompact)
	titleCache := make(map[primitive.ObjectID]string)

	for i, n := range notifications {
		views[i] = models.NotificationView{Notification: n}

		if title, ok := titleCache[n.PostID]; ok {
			views[i].PostTitle = title
		} else if post, err := h.postRepository.GetPostByID(ctx, n.PostID.Hex()); err == nil {
			titleCache[n.PostID] = post.Title
			views[i].PostTitle = post.Title
		}

		if actor, ok := userCache[n.ActorID]; ok {
			views[i].Actor = actor
		} else if user, err := h.userRepository.GetUserByUID(n.ActorID); err == nil {
			compact := user.ToCompact()
			userCache[n.ActorID] = compact
			views[i].Actor = compact
		}

		views[i].CommentText = h.commentText(ctx, n.CommentID)
		views[i].RepliedOnComment = h.commentText(ctx, n.RepliedOnID)
		views[i].ReplyText = h.commentText(ctx, n.ReplyID)
	}
	return views
}

func (h *NotificationHandler) commentText(ctx context.Context, id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	comment, err := h.commentRepository.GetCommentByID(ctx, id.Hex())
	if err != nil {
		return ""
	}
	return comment.Text
}

// CheckNewNotification reports whether the caller has any unseen
// notification that was not triggered by themselves.
func (h *NotificationHandler) CheckNewNotification(c echo.Context) error {
	uid := callerUID(c)

	available, err := h.notificationRepository.HasUnseen(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"new_notification_available": available})
}

// CountNotifications returns the caller's notification count under a filter
func (h *NotificationHandler) CountNotifications(c echo.Context) error {
	uid := callerUID(c)

	var req models.CountNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	count, err := h.notificationRepository.Count(c.Request().Context(), uid, req.Filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"totalDocs": count})
}
