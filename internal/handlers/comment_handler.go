package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/ToseebNadaf/TaskStream/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to the comment tree
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterCommentRoutes registers the protected comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.AddComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// RegisterPublicCommentRoutes registers the listing routes, which need no auth
func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.POST("/comments/list", h.GetPostComments)
	g.POST("/comments/replies", h.GetReplies)
}

// AddComment creates a root comment on a post, or a reply when parent_id is
// set, updates the post's counters and fans out the matching notification.
func (h *CommentHandler) AddComment(c echo.Context) error {
	uid := callerUID(c)

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		return httpError(err)
	}

	comment := &models.Comment{
		PostID:       post.ID,
		PostAuthorID: req.PostAuthorID,
		AuthorID:     uid,
		Text:         req.Text,
	}

	var parent *models.Comment
	if req.ParentID != "" {
		parent, err = h.commentRepository.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return httpError(err)
		}
		if parent.PostID != post.ID {
			return httpError(fmt.Errorf("comment %s does not belong to post %s: %w",
				req.ParentID, req.PostID, models.ErrNotFound))
		}
		pid := parent.ID
		comment.ParentID = &pid
		comment.IsReply = true
	}

	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if parent != nil {
		if err := h.commentRepository.PushChild(ctx, parent.ID, comment.ID); err != nil {
			log.Printf("append child %s to %s: %v", comment.ID.Hex(), parent.ID.Hex(), err)
		}
	}

	if err := h.postRepository.PushCommentRef(ctx, req.PostID, comment.ID); err != nil {
		log.Printf("push comment ref on post %s: %v", req.PostID, err)
	}
	delta := models.ActivityDelta{TotalComments: 1}
	if parent == nil {
		delta.TotalParentComments = 1
	}
	if err := h.postRepository.AdjustActivity(ctx, req.PostID, delta); err != nil {
		log.Printf("adjust activity on post %s: %v", req.PostID, err)
	}

	h.fanOutCommentNotification(ctx, comment, parent, req.OriginatingNotificationID)

	return c.JSON(http.StatusOK, models.AddCommentResponse{
		CommentID: comment.ID.Hex(),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		AuthorID:  comment.AuthorID,
		ChildIDs:  comment.Children,
	})
}

// fanOutCommentNotification creates the comment or reply notification for a
// new comment. A root comment notifies the post author; a reply notifies the
// author of the comment being replied to. When the reply was made through a
// notification's own reply action, that notification gets the back-pointer.
func (h *CommentHandler) fanOutCommentNotification(ctx context.Context, comment, parent *models.Comment, originatingNotificationID string) {
	notification := &models.Notification{
		Type:        models.NotificationComment,
		PostID:      comment.PostID,
		RecipientID: comment.PostAuthorID,
		ActorID:     comment.AuthorID,
		CommentID:   &comment.ID,
	}

	if parent != nil {
		notification.Type = models.NotificationReply
		notification.RecipientID = parent.AuthorID
		rid := parent.ID
		notification.RepliedOnID = &rid

		if originatingNotificationID != "" {
			if err := h.notificationRepository.SetReply(ctx, originatingNotificationID, comment.ID); err != nil {
				log.Printf("set reply ref on notification %s: %v", originatingNotificationID, err)
			}
		}
	}

	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		log.Printf("create %s notification for comment %s: %v", notification.Type, comment.ID.Hex(), err)
	}
}

// GetPostComments retrieves a page of a post's root comments
func (h *CommentHandler) GetPostComments(c echo.Context) error {
	var req models.ListCommentsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	comments, err := h.commentRepository.ListRootComments(ctx, postID, req.Skip, repositories.CommentPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichComments(comments))
}

// GetReplies retrieves a page of a comment's direct children
func (h *CommentHandler) GetReplies(c echo.Context) error {
	var req models.ListRepliesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	parentID, err := primitive.ObjectIDFromHex(req.ParentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	replies, err := h.commentRepository.ListReplies(ctx, parentID, req.Skip, repositories.CommentPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"replies": h.enrichComments(replies)})
}

func (h *CommentHandler) enrichComments(comments []models.Comment) []models.CommentView {
	views := make([]models.CommentView, len(comments))
	userCache := make(map[string]models.UserCompact)

	for i, comment := range comments {
		views[i] = models.CommentView{Comment: comment}
		if author, ok := userCache[comment.AuthorID]; ok {
			views[i].CommentedBy = author
		} else if user, err := h.userRepository.GetUserByUID(comment.AuthorID); err == nil {
			compact := user.ToCompact()
			userCache[comment.AuthorID] = compact
			views[i].CommentedBy = compact
		}
	}
	return views
}

// DeleteComment removes a comment and its whole descendant subtree. Only the
// comment's author or the post's author may delete. The response does not
// wait for the subtree walk to finish.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid := callerUID(c)

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	if uid != comment.AuthorID && uid != comment.PostAuthorID {
		return httpError(fmt.Errorf("delete comment %s: %w", comment.ID.Hex(), models.ErrUnauthorized))
	}

	go h.deleteCommentTree(context.Background(), comment)

	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// deleteCommentTree removes a comment and every descendant. The traversal is
// an iterative post-order over an explicit stack, so the depth of the reply
// tree never grows the call stack. Each removal step is best-effort: a failed
// later step must not undo an already-completed earlier one.
func (h *CommentHandler) deleteCommentTree(ctx context.Context, target *models.Comment) {
	var order []*models.Comment
	stack := []*models.Comment{target}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, node)

		for _, childID := range node.Children {
			child, err := h.commentRepository.GetCommentByID(ctx, childID.Hex())
			if err != nil {
				continue // already gone
			}
			stack = append(stack, child)
		}
	}

	// Reversing the discovery order yields post-order: every node comes
	// after all of its descendants.
	for i := len(order) - 1; i >= 0; i-- {
		h.removeCommentNode(ctx, order[i])
	}

	h.auditPostCounters(ctx, target.PostID)
}

// removeCommentNode deletes one comment document and repairs everything that
// referenced it: the parent's child list, notifications it caused, reply
// back-pointers to it, the post's comment list and the post's counters.
func (h *CommentHandler) removeCommentNode(ctx context.Context, node *models.Comment) {
	if _, err := h.commentRepository.DeleteComment(ctx, node.ID); err != nil {
		log.Printf("delete comment %s: %v", node.ID.Hex(), err)
		return
	}

	if node.ParentID != nil {
		if err := h.commentRepository.PullChild(ctx, *node.ParentID, node.ID); err != nil {
			log.Printf("unlink comment %s from parent %s: %v", node.ID.Hex(), node.ParentID.Hex(), err)
		}
	}

	if _, err := h.notificationRepository.DeleteByComment(ctx, node.ID); err != nil {
		log.Printf("delete notifications for comment %s: %v", node.ID.Hex(), err)
	}
	if err := h.notificationRepository.ClearReplyRef(ctx, node.ID); err != nil {
		log.Printf("clear reply refs to comment %s: %v", node.ID.Hex(), err)
	}

	postID := node.PostID.Hex()
	if err := h.postRepository.PullCommentRef(ctx, postID, node.ID); err != nil {
		log.Printf("pull comment ref on post %s: %v", postID, err)
	}
	delta := models.ActivityDelta{TotalComments: -1}
	if node.ParentID == nil {
		delta.TotalParentComments = -1
	}
	if err := h.postRepository.AdjustActivity(ctx, postID, delta); err != nil {
		log.Printf("adjust activity on post %s: %v", postID, err)
	}
}

// auditPostCounters compares a post's counters against the live comment
// counts and logs a consistency warning on mismatch. There is no repair
// path; the counters are expected to drift only when a multi-step sequence
// was interrupted.
func (h *CommentHandler) auditPostCounters(ctx context.Context, postID primitive.ObjectID) {
	post, err := h.postRepository.GetPostByID(ctx, postID.Hex())
	if err != nil {
		return
	}

	liveComments, err := h.commentRepository.CountByPost(ctx, postID)
	if err != nil {
		return
	}
	liveRoots, err := h.commentRepository.CountRootsByPost(ctx, postID)
	if err != nil {
		return
	}

	if post.Activity.TotalComments != liveComments || post.Activity.TotalParentComments != liveRoots {
		log.Printf("consistency warning: post %s counters (total_comments=%d, total_parent_comments=%d) do not match live counts (%d, %d)",
			postID.Hex(), post.Activity.TotalComments, post.Activity.TotalParentComments, liveComments, liveRoots)
	}
}
