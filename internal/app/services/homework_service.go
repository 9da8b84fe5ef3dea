package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/classroom/internal/app/auth"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/helpers"
)

// HomeworkService manages homework issued by course teachers
type HomeworkService interface {
	CreateHomework(ctx context.Context, principal models.Principal, req *dto.CreateHomeworkRequest, files []*multipart.FileHeader) (*models.Homework, error)
	UpdateHomework(ctx context.Context, principal models.Principal, homeworkID int64, req *dto.UpdateHomeworkRequest) (*models.Homework, error)
	DeleteHomework(ctx context.Context, principal models.Principal, homeworkID int64) error
	GetHomework(ctx context.Context, principal models.Principal, homeworkID int64) (*models.Homework, error)
	// ListMine returns issued homework for a teacher and homework of enrolled courses for a student
	ListMine(ctx context.Context, principal models.Principal) ([]models.Homework, error)
	ListByCourse(ctx context.Context, principal models.Principal, courseID int64) ([]models.Homework, error)
}

type homeworkServiceImpl struct {
	homeworkRepo repositories.IHomeworkRepository
	uploads      UploadService
	membership   Membership
	logger       zerolog.Logger
	opts         options
}

// NewHomeworkService creates a new HomeworkService
func NewHomeworkService(
	homeworkRepo repositories.IHomeworkRepository,
	uploads UploadService,
	membership Membership,
	logger zerolog.Logger,
	opts ...Option,
) HomeworkService {
	return &homeworkServiceImpl{
		homeworkRepo: homeworkRepo,
		uploads:      uploads,
		membership:   membership,
		logger:       logger,
		opts:         buildOptions(opts),
	}
}

func (s *homeworkServiceImpl) CreateHomework(ctx context.Context, principal models.Principal, req *dto.CreateHomeworkRequest, files []*multipart.FileHeader) (*models.Homework, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewInvalidArgumentError("Title is required")
	}
	deadline, err := helpers.ParseDateOrTime(req.Deadline)
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError("Invalid deadline")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, req.CourseID, models.MembershipTeacher); err != nil {
		return nil, err
	}

	attachments, err := s.uploads.SaveFiles(ctx, principal, files)
	if err != nil {
		return nil, err
	}

	homework := &models.Homework{
		Title:       title,
		Description: req.Description,
		Deadline:    deadline,
		CourseID:    req.CourseID,
		TeacherID:   principal.ID,
	}
	if err := s.homeworkRepo.Create(ctx, homework, attachments); err != nil {
		s.uploads.DeleteUploads(ctx, attachments)
		return nil, fmt.Errorf("failed to create homework: %w", err)
	}

	s.logger.Info().
		Int64("homeworkId", homework.ID).
		Int64("courseId", homework.CourseID).
		Int("attachments", len(attachments)).
		Msg("Homework created")
	publish(s.opts.publisher, s.opts.now(), models.EventHomeworkCreated, homework.CourseID, principal.ID, homework)

	return homework, nil
}

// owned loads a homework the principal issued as the course teacher
func (s *homeworkServiceImpl) owned(ctx context.Context, principal models.Principal, homeworkID int64) (*models.Homework, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}
	homework, err := s.homeworkRepo.GetByID(ctx, homeworkID)
	if err != nil {
		return nil, notFound(err, "Homework not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, homework.CourseID, models.MembershipTeacher); err != nil {
		return nil, err
	}
	return homework, nil
}

func (s *homeworkServiceImpl) UpdateHomework(ctx context.Context, principal models.Principal, homeworkID int64, req *dto.UpdateHomeworkRequest) (*models.Homework, error) {
	homework, err := s.owned(ctx, principal, homeworkID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewInvalidArgumentError("Title cannot be empty")
		}
		homework.Title = title
	}
	if req.Description != nil {
		homework.Description = *req.Description
	}
	if req.Deadline != nil {
		deadline, err := helpers.ParseDateOrTime(*req.Deadline)
		if err != nil {
			return nil, apperrors.NewInvalidArgumentError("Invalid deadline")
		}
		homework.Deadline = deadline
	}

	if err := s.homeworkRepo.Update(ctx, homework); err != nil {
		return nil, notFound(err, "Homework not found")
	}
	return homework, nil
}

func (s *homeworkServiceImpl) DeleteHomework(ctx context.Context, principal models.Principal, homeworkID int64) error {
	homework, err := s.owned(ctx, principal, homeworkID)
	if err != nil {
		return err
	}
	if err := s.homeworkRepo.SoftDelete(ctx, homework.ID); err != nil {
		return notFound(err, "Homework not found")
	}
	s.logger.Info().Int64("homeworkId", homework.ID).Msg("Homework deleted")
	return nil
}

func (s *homeworkServiceImpl) GetHomework(ctx context.Context, principal models.Principal, homeworkID int64) (*models.Homework, error) {
	homework, err := s.homeworkRepo.GetByID(ctx, homeworkID)
	if err != nil {
		return nil, notFound(err, "Homework not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, homework.CourseID); err != nil {
		return nil, err
	}
	return homework, nil
}

func (s *homeworkServiceImpl) ListMine(ctx context.Context, principal models.Principal) ([]models.Homework, error) {
	switch principal.Type {
	case models.UserTypeTeacher:
		return s.homeworkRepo.ListByTeacher(ctx, principal.ID)
	case models.UserTypeStudent:
		return s.homeworkRepo.ListForStudent(ctx, principal.ID)
	default:
		return nil, apperrors.NewForbiddenError("Unknown user type")
	}
}

func (s *homeworkServiceImpl) ListByCourse(ctx context.Context, principal models.Principal, courseID int64) ([]models.Homework, error) {
	if _, err := s.membership.RequireMembership(ctx, principal, courseID); err != nil {
		return nil, err
	}
	return s.homeworkRepo.ListByCourse(ctx, courseID)
}
