package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// PostService manages course announcements
type PostService interface {
	CreatePost(ctx context.Context, principal models.Principal, courseID int64, req *dto.CreatePostRequest, files []*multipart.FileHeader) (*models.Post, error)
	GetPost(ctx context.Context, principal models.Principal, postID int64) (*models.Post, error)
	ListPosts(ctx context.Context, principal models.Principal, courseID int64) ([]models.Post, error)
	DeletePost(ctx context.Context, principal models.Principal, postID int64) error
}

// CommentService manages comments on posts
type CommentService interface {
	CreateComment(ctx context.Context, principal models.Principal, req *dto.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, principal models.Principal, postID int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, principal models.Principal, commentID int64) error
}

type postServiceImpl struct {
	postRepo   repositories.IPostRepository
	uploads    UploadService
	membership Membership
	logger     zerolog.Logger
	opts       options
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.IPostRepository,
	uploads UploadService,
	membership Membership,
	logger zerolog.Logger,
	opts ...Option,
) PostService {
	return &postServiceImpl{
		postRepo:   postRepo,
		uploads:    uploads,
		membership: membership,
		logger:     logger,
		opts:       buildOptions(opts),
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, principal models.Principal, courseID int64, req *dto.CreatePostRequest, files []*multipart.FileHeader) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewInvalidArgumentError("Content is required")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, courseID, models.MembershipTeacher); err != nil {
		return nil, err
	}

	attachments, err := s.uploads.SaveFiles(ctx, principal, files)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		CourseID: courseID,
		AuthorID: principal.ID,
		Content:  content,
	}
	if err := s.postRepo.Create(ctx, post, attachments); err != nil {
		s.uploads.DeleteUploads(ctx, attachments)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info().Int64("postId", post.ID).Int64("courseId", courseID).Msg("Post created")
	publish(s.opts.publisher, s.opts.now(), models.EventPostCreated, courseID, principal.ID, post)
	return post, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, principal models.Principal, postID int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, post.CourseID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context, principal models.Principal, courseID int64) ([]models.Post, error) {
	if _, err := s.membership.RequireMembership(ctx, principal, courseID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByCourse(ctx, courseID)
}

func (s *postServiceImpl) DeletePost(ctx context.Context, principal models.Principal, postID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return notFound(err, "Post not found")
	}
	if post.AuthorID != principal.ID {
		return apperrors.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.SoftDelete(ctx, post.ID); err != nil {
		return notFound(err, "Post not found")
	}
	return nil
}

type commentServiceImpl struct {
	commentRepo repositories.ICommentRepository
	postRepo    repositories.IPostRepository
	membership  Membership
	logger      zerolog.Logger
	opts        options
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo repositories.ICommentRepository,
	postRepo repositories.IPostRepository,
	membership Membership,
	logger zerolog.Logger,
	opts ...Option,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		membership:  membership,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, principal models.Principal, req *dto.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewInvalidArgumentError("Content is required")
	}

	post, err := s.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, post.CourseID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: principal.ID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = &models.UserSummary{
		ID:        principal.ID,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		Email:     principal.Email,
	}

	publish(s.opts.publisher, s.opts.now(), models.EventCommentCreated, post.CourseID, principal.ID, comment)
	return comment, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, principal models.Principal, postID int64) ([]models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, post.CourseID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, post.ID)
}

func (s *commentServiceImpl) DeleteComment(ctx context.Context, principal models.Principal, commentID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return notFound(err, "Comment not found")
	}
	if comment.AuthorID != principal.ID {
		return apperrors.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.SoftDelete(ctx, comment.ID); err != nil {
		return notFound(err, "Comment not found")
	}
	return nil
}
