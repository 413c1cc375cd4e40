package handlers

import (
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/ToseebNadaf/TaskStream/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles the per-(user, post) like toggle. Like state is the
// existence of the matching like notification; there is no separate likes
// collection.
type LikeHandler struct {
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		postRepository:         postRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/posts/:id/like", h.IsLiked)
}

// ToggleLike flips the caller's like state on a post. Liking increments
// total_likes and creates the like notification for the post author;
// unliking decrements and deletes it.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	uid := callerUID(c)
	postID := c.Param("id")

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	delta := models.ActivityDelta{TotalLikes: 1}
	if req.CurrentlyLiked {
		delta.TotalLikes = -1
	}
	if err := h.postRepository.AdjustActivity(ctx, postID, delta); err != nil {
		return httpError(err)
	}

	if req.CurrentlyLiked {
		if err := h.notificationRepository.DeleteLike(ctx, post.ID, uid); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		notification := &models.Notification{
			Type:        models.NotificationLike,
			PostID:      post.ID,
			RecipientID: post.AuthorID,
			ActorID:     uid,
		}
		if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"liked_by_user": !req.CurrentlyLiked})
}

// IsLiked reports whether the caller has liked a post
func (h *LikeHandler) IsLiked(c echo.Context) error {
	uid := callerUID(c)
	postID := c.Param("id")

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	liked, err := h.notificationRepository.LikeExists(ctx, post.ID, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}
