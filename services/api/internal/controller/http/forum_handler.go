package http

import (
	"context"
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventSubscriber opens a Redis subscription; nil means live events are off.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

type ForumHandler struct {
	forumUseCase usecase.ForumUseCase
	events       EventSubscriber
	logger       *logger.Logger
}

func NewForumHandler(forumUseCase usecase.ForumUseCase, events EventSubscriber, logger *logger.Logger) *ForumHandler {
	return &ForumHandler{
		forumUseCase: forumUseCase,
		events:       events,
		logger:       logger,
	}
}

type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category" binding:"max=50"`
	Tags     []string `json:"tags" binding:"max=10,dive,max=30"`
}

type CreateReplyRequest struct {
	PostID        string `json:"postId" binding:"required"`
	ParentReplyID string `json:"parentReplyId"`
	Content       string `json:"content" binding:"required"`
}

// ListPosts godoc
// @Summary      List forum posts
// @Tags         forum
// @Produce      json
// @Param        category  query  string  false  "Category"
// @Param        tag       query  string  false  "Tag"
// @Success      200  {array}  entity.ForumPost
// @Router       /forum-posts [get]
func (h *ForumHandler) ListPosts(c *gin.Context) {
	posts, err := h.forumUseCase.ListPosts(c.Request.Context(), entity.ForumFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get a forum post
// @Tags         forum
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  entity.ForumPost
// @Failure      404  {object}  map[string]string
// @Router       /forum-posts/{id} [get]
func (h *ForumHandler) GetPost(c *gin.Context) {
	post, err := h.forumUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary      Create a forum post
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post"
// @Success      201  {object}  entity.ForumPost
// @Failure      400  {object}  map[string]string
// @Router       /forum-posts [post]
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	post, err := h.forumUseCase.CreatePost(c.Request.Context(), actorFrom(c), &entity.ForumPost{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost godoc
// @Summary      Delete a forum post and its replies
// @Tags         forum
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /forum-posts/{id} [delete]
func (h *ForumHandler) DeletePost(c *gin.Context) {
	if err := h.forumUseCase.DeletePost(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// ListReplies godoc
// @Summary      List replies of a post
// @Tags         forum
// @Produce      json
// @Param        postId  query  string  true  "Post ID"
// @Success      200  {array}  entity.ForumReply
// @Failure      400  {object}  map[string]string
// @Router       /forum-replies [get]
func (h *ForumHandler) ListReplies(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId is required"})
		return
	}

	replies, err := h.forumUseCase.ListReplies(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch replies")
		return
	}
	c.JSON(http.StatusOK, replies)
}

// CreateReply godoc
// @Summary      Reply to a post or another reply
// @Tags         forum
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateReplyRequest true "Reply"
// @Success      201  {object}  entity.ForumReply
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /forum-replies [post]
func (h *ForumHandler) CreateReply(c *gin.Context) {
	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	reply, err := h.forumUseCase.CreateReply(c.Request.Context(), actorFrom(c), &entity.ForumReply{
		PostID:        req.PostID,
		ParentReplyID: req.ParentReplyID,
		Content:       req.Content,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to create reply")
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// GetThread godoc
// @Summary      Threaded replies of a post
// @Description  Replies nested under their parent; canReply is false from depth 2 on
// @Tags         forum
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {array}   entity.ThreadNode
// @Failure      404  {object}  map[string]string
// @Router       /forum-posts/{id}/thread [get]
func (h *ForumHandler) GetThread(c *gin.Context) {
	thread, err := h.forumUseCase.GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to build thread")
		return
	}
	c.JSON(http.StatusOK, thread)
}

// Stream godoc
// @Summary      Live forum events
// @Description  WebSocket relaying post.created, post.deleted and reply.created events
// @Tags         forum
// @Success      101
// @Failure      503  {object}  map[string]string
// @Router       /forum/stream [get]
func (h *ForumHandler) Stream(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates are unavailable"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.events.Subscribe(ctx, usecase.ForumEventsChannel)
	if pubsub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates are unavailable"})
		return
	}
	defer pubsub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("Forum stream connected from %s", c.ClientIP())

	redisChannel := pubsub.Channel()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-redisChannel:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					h.logger.Warn("Failed to write forum event: %v", err)
					return
				}
			}
		}
	}()

	// Pings are answered by the default handler; reads only watch for the close.
	for {
		messageType, _, err := conn.ReadMessage()
		if err != nil || messageType == websocket.CloseMessage {
			break
		}
	}

	close(done)
	h.logger.Info("Forum stream disconnected from %s", c.ClientIP())
}
