package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/classroom/internal/app/auth"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

const (
	minGrade = 0
	maxGrade = 100
)

// SubmissionService handles student submissions and their grading
type SubmissionService interface {
	// Submit stores files first and removes them again if the submission is refused
	Submit(ctx context.Context, principal models.Principal, homeworkID int64, files []*multipart.FileHeader) (*models.Submission, error)
	GetMine(ctx context.Context, principal models.Principal, homeworkID int64) (*models.Submission, error)
	Delete(ctx context.Context, principal models.Principal, homeworkID int64) error
	Grade(ctx context.Context, principal models.Principal, submissionID int64, grade int, feedback *string) (*models.Submission, error)
	Roster(ctx context.Context, principal models.Principal, homeworkID int64) ([]models.RosterEntry, error)
}

type submissionServiceImpl struct {
	submissionRepo repositories.ISubmissionRepository
	homeworkRepo   repositories.IHomeworkRepository
	userRepo       repositories.IUserRepository
	courseRepo     repositories.ICourseRepository
	uploads        UploadService
	membership     Membership
	logger         zerolog.Logger
	opts           options
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo repositories.ISubmissionRepository,
	homeworkRepo repositories.IHomeworkRepository,
	userRepo repositories.IUserRepository,
	courseRepo repositories.ICourseRepository,
	uploads UploadService,
	membership Membership,
	logger zerolog.Logger,
	opts ...Option,
) SubmissionService {
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		homeworkRepo:   homeworkRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		uploads:        uploads,
		membership:     membership,
		logger:         logger,
		opts:           buildOptions(opts),
	}
}

func (s *submissionServiceImpl) Submit(ctx context.Context, principal models.Principal, homeworkID int64, files []*multipart.FileHeader) (*models.Submission, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewInvalidArgumentError("At least one file is required")
	}

	uploads, err := s.uploads.SaveFiles(ctx, principal, files)
	if err != nil {
		return nil, err
	}

	submission, err := s.submit(ctx, principal, homeworkID, uploads)
	if err != nil {
		s.uploads.DeleteUploads(ctx, uploads)
		return nil, err
	}

	s.logger.Info().
		Int64("submissionId", submission.ID).
		Int64("homeworkId", homeworkID).
		Str("studentId", principal.ID.String()).
		Int("files", len(uploads)).
		Msg("Homework submitted")
	return submission, nil
}

func (s *submissionServiceImpl) submit(ctx context.Context, principal models.Principal, homeworkID int64, uploads []models.Upload) (*models.Submission, error) {
	homework, err := s.homeworkRepo.GetByID(ctx, homeworkID)
	if err != nil {
		return nil, notFound(err, "Homework not found")
	}

	now := s.opts.now()
	if homework.DeadlinePassed(now) {
		return nil, apperrors.NewForbiddenError("Submission deadline has passed")
	}

	submitted, err := s.submissionRepo.Exists(ctx, homework.ID, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if submitted {
		return nil, apperrors.NewConflictError("You have already submitted this homework")
	}

	if _, err := s.userRepo.GetByID(ctx, principal.ID); err != nil {
		return nil, notFound(err, "Student not found")
	}

	enrolled, err := s.courseRepo.IsStudentEnrolled(ctx, homework.CourseID, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.NewForbiddenError("You are not enrolled in this course")
	}

	submission := &models.Submission{
		HomeworkID:     homework.ID,
		StudentID:      principal.ID,
		SubmissionDate: now,
	}
	if err := s.submissionRepo.Create(ctx, submission, uploads); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("You have already submitted this homework")
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return submission, nil
}

func (s *submissionServiceImpl) GetMine(ctx context.Context, principal models.Principal, homeworkID int64) (*models.Submission, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return nil, err
	}
	submission, err := s.submissionRepo.GetActive(ctx, homeworkID, principal.ID)
	if err != nil {
		return nil, notFound(err, "Submission not found")
	}
	return submission, nil
}

func (s *submissionServiceImpl) Delete(ctx context.Context, principal models.Principal, homeworkID int64) error {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return err
	}

	submission, err := s.submissionRepo.GetActive(ctx, homeworkID, principal.ID)
	if err != nil {
		return notFound(err, "Submission not found or does not belong to you")
	}
	if !submission.Deletable(s.opts.now()) {
		return apperrors.NewForbiddenError("Submissions can only be deleted within 1 hour of submission")
	}

	if err := s.submissionRepo.SoftDelete(ctx, submission.ID); err != nil {
		return notFound(err, "Submission not found or does not belong to you")
	}
	s.uploads.DeleteUploads(ctx, submission.Uploads)

	s.logger.Info().
		Int64("submissionId", submission.ID).
		Str("studentId", principal.ID.String()).
		Msg("Submission deleted")
	return nil
}

func (s *submissionServiceImpl) Grade(ctx context.Context, principal models.Principal, submissionID int64, grade int, feedback *string) (*models.Submission, error) {
	if grade < minGrade || grade > maxGrade {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("Grade must be between %d and %d", minGrade, maxGrade))
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "Submission not found")
	}
	homework, err := s.homeworkRepo.GetByID(ctx, submission.HomeworkID)
	if err != nil {
		return nil, notFound(err, "Homework not found")
	}

	membership, err := s.membership.IsMember(ctx, principal.ID, homework.CourseID)
	if err != nil {
		return nil, err
	}
	if principal.Type != models.UserTypeTeacher || membership != models.MembershipTeacher {
		return nil, apperrors.NewUnauthorizedError("You are not authorized to grade this submission")
	}

	if err := s.submissionRepo.Grade(ctx, submission.ID, grade, feedback); err != nil {
		return nil, notFound(err, "Submission not found")
	}
	submission.Grade = &grade
	submission.Feedback = feedback

	s.logger.Info().
		Int64("submissionId", submission.ID).
		Int("grade", grade).
		Msg("Submission graded")
	return submission, nil
}

func (s *submissionServiceImpl) Roster(ctx context.Context, principal models.Principal, homeworkID int64) ([]models.RosterEntry, error) {
	homework, err := s.homeworkRepo.GetByID(ctx, homeworkID)
	if err != nil {
		return nil, notFound(err, "Homework not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, homework.CourseID, models.MembershipTeacher); err != nil {
		return nil, err
	}

	students, err := s.courseRepo.ListStudents(ctx, homework.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	submissions, err := s.submissionRepo.ListByHomework(ctx, homework.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	byStudent := make(map[uuid.UUID]*models.Submission, len(submissions))
	for i := range submissions {
		byStudent[submissions[i].StudentID] = &submissions[i]
	}

	roster := make([]models.RosterEntry, 0, len(students))
	for _, st := range students {
		sub := byStudent[st.ID]
		roster = append(roster, models.RosterEntry{
			Student:    st.Summary(),
			Status:     models.StatusOf(sub),
			Submission: sub,
		})
	}
	return roster, nil
}
