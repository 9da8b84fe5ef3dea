package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
)

// PostController handles course posts and their comments
type PostController struct {
	postService    services.PostService
	commentService services.CommentService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, commentService services.CommentService) *PostController {
	return &PostController{
		postService:    postService,
		commentService: commentService,
	}
}

// CreatePost godoc
// @Summary Publish a post in a course
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param content formData string true "Content"
// @Param files formData file false "Attachments"
// @Success 201 {object} dto.APIResponse{data=models.Post}
// @Failure 403 {object} dto.ErrorResponse "Not the teacher of the course"
// @Router /courses/{id}/posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.CreatePostRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	files, err := formFiles(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), p, courseID, &req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// ListPosts godoc
// @Summary List the posts of a course, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Post}
// @Router /courses/{id}/posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	posts, err := c.postService.ListPosts(ctx.Request.Context(), p, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=models.Post}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /courses/posts/{postId} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	post, err := c.postService.GetPost(ctx.Request.Context(), p, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /courses/posts/{postId} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.postService.DeletePost(ctx.Request.Context(), p, postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Post deleted successfully"}))
}

// CreateComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Failure 403 {object} dto.ErrorResponse "Not a member of the course"
// @Router /comments [post]
func (c *PostController) CreateComment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	comment, err := c.commentService.CreateComment(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// ListComments godoc
// @Summary List the comments of a post
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Comment}
// @Router /comments/post/{postId} [get]
func (c *PostController) ListComments(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	comments, err := c.commentService.ListComments(ctx.Request.Context(), p, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /comments/{id} [delete]
func (c *PostController) DeleteComment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.commentService.DeleteComment(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Comment deleted successfully"}))
}
