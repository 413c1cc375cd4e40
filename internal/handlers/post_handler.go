package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/ToseebNadaf/TaskStream/internal/pagination"
	"github.com/ToseebNadaf/TaskStream/internal/repositories"
	"github.com/labstack/echo/v4"
)

// latestPostsPageSize is the fixed page size for post listings
const latestPostsPageSize = 5

// trendingPostsLimit caps the trending listing
const trendingPostsLimit = 5

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, notifRepo repositories.NotificationRepository) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		commentRepository:      commentRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterPostRoutes registers the protected post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/written", h.GetUserWrittenPosts)
}

// RegisterPublicPostRoutes registers the read-only post routes
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/posts/trending", h.GetTrendingPosts)
	g.POST("/posts/latest", h.GetLatestPosts)
	g.POST("/posts/latest/count", h.GetLatestPostsCount)
	g.POST("/posts/search", h.SearchPosts)
	g.POST("/posts/search/count", h.SearchPostsCount)
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost publishes a new post by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid := callerUID(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID:    uid,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		BannerURL:   req.BannerURL,
		Tags:        req.Tags,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if user, err := h.userRepository.GetUserByUID(uid); err == nil {
		go h.userRepository.AdjustTotalPosts(user.ID, 1)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post and counts the read
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return httpError(err)
	}

	go h.postRepository.AdjustActivity(context.Background(), id, models.ActivityDelta{TotalReads: 1})

	return c.JSON(http.StatusOK, h.enrichPost(*post))
}

// GetLatestPosts returns one page of published posts, newest first
func (h *PostHandler) GetLatestPosts(c echo.Context) error {
	var req models.ListLatestPostsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	skip := pagination.Skip(req.Page, latestPostsPageSize, 0)
	posts, err := h.postRepository.GetLatestPosts(c.Request().Context(), skip, latestPostsPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrichPosts(posts)})
}

// GetLatestPostsCount returns the total number of published posts
func (h *PostHandler) GetLatestPostsCount(c echo.Context) error {
	count, err := h.postRepository.CountPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"totalDocs": count})
}

// GetTrendingPosts returns the most read and liked posts
func (h *PostHandler) GetTrendingPosts(c echo.Context) error {
	posts, err := h.postRepository.GetTrendingPosts(c.Request().Context(), trendingPostsLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrichPosts(posts)})
}

// SearchPosts searches posts by tag, title substring or author
func (h *PostHandler) SearchPosts(c echo.Context) error {
	var req models.SearchPostsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	search := repositories.PostSearch{Tag: req.Tag, Query: req.Query, Author: req.Author}
	skip := pagination.Skip(req.Page, latestPostsPageSize, 0)
	posts, err := h.postRepository.SearchPosts(c.Request().Context(), search, skip, latestPostsPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrichPosts(posts)})
}

// SearchPostsCount counts posts matching a search
func (h *PostHandler) SearchPostsCount(c echo.Context) error {
	var req models.SearchPostsCountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	search := repositories.PostSearch{Tag: req.Tag, Query: req.Query, Author: req.Author}
	count, err := h.postRepository.CountSearchPosts(c.Request().Context(), search)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"totalDocs": count})
}

// GetUserWrittenPosts returns one page of the caller's own posts
func (h *PostHandler) GetUserWrittenPosts(c echo.Context) error {
	uid := callerUID(c)

	var req models.ListLatestPostsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	skip := pagination.Skip(req.Page, latestPostsPageSize, 0)
	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), uid, skip, latestPostsPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrichPosts(posts)})
}

// DeletePost removes a post together with all of its comments and
// notifications. Only the author may delete. The cleanup of dependent
// records runs after the response, like the comment cascade.
func (h *PostHandler) DeletePost(c echo.Context) error {
	uid := callerUID(c)
	id := c.Param("id")

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if post.AuthorID != uid {
		return httpError(fmt.Errorf("delete post %s: %w", id, models.ErrUnauthorized))
	}

	if err := h.postRepository.DeletePost(ctx, id); err != nil {
		return httpError(err)
	}

	go func() {
		cleanupCtx := context.Background()
		if _, err := h.commentRepository.DeleteCommentsByPost(cleanupCtx, post.ID); err != nil {
			log.Printf("delete comments of post %s: %v", id, err)
		}
		if _, err := h.notificationRepository.DeleteByPost(cleanupCtx, post.ID); err != nil {
			log.Printf("delete notifications of post %s: %v", id, err)
		}
		if user, err := h.userRepository.GetUserByUID(uid); err == nil {
			h.userRepository.AdjustTotalPosts(user.ID, -1)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

func (h *PostHandler) enrichPost(post models.Post) models.PostView {
	view := models.PostView{Post: post}
	if user, err := h.userRepository.GetUserByUID(post.AuthorID); err == nil {
		view.Author = user.ToCompact()
	}
	return view
}

func (h *PostHandler) enrichPosts(posts []models.Post) []models.PostView {
	views := make([]models.PostView, len(posts))
	userCache := make(map[string]models.UserCompact)

	for i, post := range posts {
		views[i] = models.PostView{Post: post}
		if author, ok := userCache[post.AuthorID]; ok {
			views[i].Author = author
		} else if user, err := h.userRepository.GetUserByUID(post.AuthorID); err == nil {
			compact := user.ToCompact()
			userCache[post.AuthorID] = compact
			views[i].Author = compact
		}
	}
	return views
}
