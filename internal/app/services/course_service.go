package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/classroom/internal/app/auth"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/email"
	"github.com/yigit/classroom/internal/pkg/helpers"
)

const (
	invitationSubject = "Course Invitation"
	invitationText    = "You've been invited to join a course. Use this code to join: %s"

	// maxCodeInsertAttempts bounds retries when a generated code loses an insert race
	maxCodeInsertAttempts = 3
)

// CodeGenerator produces course codes
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// CourseService manages courses and enrollment
type CourseService interface {
	CreateCourse(ctx context.Context, principal models.Principal, req *dto.CreateCourseRequest) (*dto.CreateCourseResponse, error)
	ArchiveCourse(ctx context.Context, principal models.Principal, courseID int64) error
	ListTeacherCourses(ctx context.Context, principal models.Principal) ([]models.Course, error)
	ListEnrolledCourses(ctx context.Context, principal models.Principal) ([]models.Course, error)
	JoinByCode(ctx context.Context, principal models.Principal, code string) error
	JoinByInvitation(ctx context.Context, principal models.Principal, courseID int64) error
	ListStudents(ctx context.Context, principal models.Principal, courseID int64) (*dto.CourseStudentsResponse, error)
}

type courseServiceImpl struct {
	courseRepo  repositories.ICourseRepository
	membership  Membership
	codes       CodeGenerator
	mailer      email.Mailer
	mailTimeout time.Duration
	logger      zerolog.Logger
	opts        options
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	membership Membership,
	codes CodeGenerator,
	mailer email.Mailer,
	mailTimeout time.Duration,
	logger zerolog.Logger,
	opts ...Option,
) CourseService {
	if mailTimeout <= 0 {
		mailTimeout = 30 * time.Second
	}
	return &courseServiceImpl{
		courseRepo:  courseRepo,
		membership:  membership,
		codes:       codes,
		mailer:      mailer,
		mailTimeout: mailTimeout,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

func (s *courseServiceImpl) CreateCourse(ctx context.Context, principal models.Principal, req *dto.CreateCourseRequest) (*dto.CreateCourseResponse, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}

	invitation := models.InvitationType(req.InvitationType)
	switch invitation {
	case models.InvitationTypeCode:
	case models.InvitationTypeEmail:
		if len(req.StudentEmails) == 0 {
			return nil, apperrors.NewConflictError("Student emails are required for email invitations")
		}
	default:
		return nil, apperrors.NewConflictError("Invalid invitation type")
	}

	startDate, err := helpers.ParseDateOrTime(req.StartDate)
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError("Invalid start date")
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		StartDate:   startDate,
		TeacherID:   principal.ID,
	}
	if err := s.createWithCode(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseId", course.ID).
		Str("teacherId", principal.ID.String()).
		Str("invitationType", string(invitation)).
		Msg("Course created")

	if invitation == models.InvitationTypeCode {
		return &dto.CreateCourseResponse{CourseID: course.ID, CourseCode: *course.CourseCode}, nil
	}

	s.sendInvitations(req.StudentEmails, *course.CourseCode)
	return &dto.CreateCourseResponse{CourseID: course.ID, Message: "Invitation emails sent successfully"}, nil
}

func (s *courseServiceImpl) createWithCode(ctx context.Context, course *models.Course) error {
	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate course code: %w", err)
		}
		course.CourseCode = &code

		err = s.courseRepo.Create(ctx, course)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrCourseCodeTaken) || attempt >= maxCodeInsertAttempts {
			return fmt.Errorf("failed to create course: %w", err)
		}
		s.logger.Warn().Str("code", code).Int("attempt", attempt).Msg("Course code taken at insert, regenerating")
	}
}

// sendInvitations mails each recipient in the background; failures are only logged
func (s *courseServiceImpl) sendInvitations(recipients []string, code string) {
	for _, to := range recipients {
		msg := email.Message{
			To:      to,
			Subject: invitationSubject,
			Text:    fmt.Sprintf(invitationText, code),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.mailTimeout)
			defer cancel()
			if err := s.mailer.SendMail(ctx, msg); err != nil {
				s.logger.Error().Err(err).Str("to", msg.To).Msg("Failed to send course invitation")
			}
		}()
	}
}

func (s *courseServiceImpl) ArchiveCourse(ctx context.Context, principal models.Principal, courseID int64) error {
	archived, err := s.courseRepo.Archive(ctx, courseID, principal.ID)
	if err != nil {
		return fmt.Errorf("failed to archive course: %w", err)
	}
	if !archived {
		return apperrors.NewResourceNotFoundError("Course not found or you do not have permission to archive it")
	}
	s.logger.Info().Int64("courseId", courseID).Msg("Course archived")
	return nil
}

func (s *courseServiceImpl) ListTeacherCourses(ctx context.Context, principal models.Principal) ([]models.Course, error) {
	return s.courseRepo.ListByTeacher(ctx, principal.ID)
}

func (s *courseServiceImpl) ListEnrolledCourses(ctx context.Context, principal models.Principal) ([]models.Course, error) {
	return s.courseRepo.ListByStudent(ctx, principal.ID)
}

func (s *courseServiceImpl) JoinByCode(ctx context.Context, principal models.Principal, code string) error {
	course, err := s.courseRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return notFound(err, "Course not found")
	}
	return s.enroll(ctx, principal, course.ID)
}

func (s *courseServiceImpl) JoinByInvitation(ctx context.Context, principal models.Principal, courseID int64) error {
	return s.enroll(ctx, principal, courseID)
}

func (s *courseServiceImpl) enroll(ctx context.Context, principal models.Principal, courseID int64) error {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return err
	}

	inserted, err := s.courseRepo.EnrollStudent(ctx, courseID, principal.ID)
	if err != nil {
		return notFound(err, "Course not found")
	}
	if !inserted {
		return apperrors.NewConflictError("Already enrolled")
	}
	s.logger.Info().
		Int64("courseId", courseID).
		Str("studentId", principal.ID.String()).
		Msg("Student joined course")
	return nil
}

func (s *courseServiceImpl) ListStudents(ctx context.Context, principal models.Principal, courseID int64) (*dto.CourseStudentsResponse, error) {
	if _, err := s.membership.RequireMembership(ctx, principal, courseID); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, "Course not found")
	}
	students, err := s.courseRepo.ListStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	summaries := make([]models.UserSummary, 0, len(students))
	for _, st := range students {
		summaries = append(summaries, st.Summary())
	}
	return &dto.CourseStudentsResponse{
		CourseID: course.ID,
		Title:    course.Title,
		Students: summaries,
		Count:    len(summaries),
	}, nil
}
