package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/classroom/internal/app/auth"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/helpers"
)

// AbsenceService runs the absence workflow:
// unjustified -> justification pending -> validated, or back to unjustified on reject
type AbsenceService interface {
	CreateAbsence(ctx context.Context, principal models.Principal, req *dto.CreateAbsenceRequest) (*models.Absence, error)
	JustifyAbsence(ctx context.Context, principal models.Principal, absenceID int64, justification string) (*models.Absence, error)
	ValidateAbsence(ctx context.Context, principal models.Principal, absenceID int64) (*models.Absence, error)
	RejectAbsence(ctx context.Context, principal models.Principal, absenceID int64) (*models.Absence, error)
	DeleteAbsence(ctx context.Context, principal models.Principal, absenceID int64) error

	ListForTeacher(ctx context.Context, principal models.Principal, query dto.AbsenceQuery) ([]models.Absence, error)
	ListForStudent(ctx context.Context, principal models.Principal, query dto.AbsenceQuery) ([]models.Absence, error)
	CountForStudentCourse(ctx context.Context, principal models.Principal, courseID int64) (*dto.AbsenceCountResponse, error)
	SummaryForStudent(ctx context.Context, principal models.Principal) ([]models.CourseAbsenceCount, error)
	CourseStudentCounts(ctx context.Context, principal models.Principal, courseID int64) (*dto.CourseAbsencesResponse, error)
	UnjustifiedCount(ctx context.Context, principal models.Principal) (int64, error)
}

type absenceServiceImpl struct {
	absenceRepo repositories.IAbsenceRepository
	userRepo    repositories.IUserRepository
	membership  Membership
	logger      zerolog.Logger
	opts        options
}

// NewAbsenceService creates a new AbsenceService
func NewAbsenceService(
	absenceRepo repositories.IAbsenceRepository,
	userRepo repositories.IUserRepository,
	membership Membership,
	logger zerolog.Logger,
	opts ...Option,
) AbsenceService {
	return &absenceServiceImpl{
		absenceRepo: absenceRepo,
		userRepo:    userRepo,
		membership:  membership,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

func (s *absenceServiceImpl) CreateAbsence(ctx context.Context, principal models.Principal, req *dto.CreateAbsenceRequest) (*models.Absence, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil || req.CourseID <= 0 {
		return nil, apperrors.NewInvalidArgumentError("Student ID and course ID are required")
	}
	date, err := helpers.ParseDateOrTime(req.Date)
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError("Invalid absence date")
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, "Student not found")
	}
	if student.Type != models.UserTypeStudent {
		return nil, apperrors.NewResourceNotFoundError("Student not found")
	}

	teacherMembership, err := s.membership.IsMember(ctx, principal.ID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if teacherMembership != models.MembershipTeacher {
		return nil, apperrors.NewConflictError("Teacher is not the owner of this course")
	}
	studentMembership, err := s.membership.IsMember(ctx, student.ID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if studentMembership != models.MembershipStudent {
		return nil, apperrors.NewConflictError("Student is not enrolled in this course")
	}

	absence := &models.Absence{
		StudentID: student.ID,
		CourseID:  req.CourseID,
		Date:      date,
	}
	if err := s.absenceRepo.Create(ctx, absence); err != nil {
		return nil, fmt.Errorf("failed to create absence: %w", err)
	}
	summary := student.Summary()
	absence.Student = &summary

	s.logger.Info().
		Int64("absenceId", absence.ID).
		Int64("courseId", absence.CourseID).
		Str("studentId", absence.StudentID.String()).
		Msg("Absence recorded")
	publish(s.opts.publisher, s.opts.now(), models.EventAbsenceCreated, absence.CourseID, principal.ID, absence)

	return absence, nil
}

// load returns the absence including deleted ones, mapped to user-facing errors
func (s *absenceServiceImpl) load(ctx context.Context, absenceID int64) (*models.Absence, error) {
	absence, err := s.absenceRepo.GetByIDWithDeleted(ctx, absenceID)
	if err != nil {
		return nil, notFound(err, "Absence not found")
	}
	return absence, nil
}

func (s *absenceServiceImpl) JustifyAbsence(ctx context.Context, principal models.Principal, absenceID int64, justification string) (*models.Absence, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return nil, err
	}
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, apperrors.NewInvalidArgumentError("Justification is required")
	}

	absence, err := s.load(ctx, absenceID)
	if err != nil {
		return nil, err
	}
	if err := justifyConflict(absence); err != nil {
		return nil, err
	}
	if absence.StudentID != principal.ID {
		return nil, apperrors.NewForbiddenError("You can only justify your own absences")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, absence.CourseID, models.MembershipStudent); err != nil {
		return nil, err
	}

	absence.Justification = &justification
	if err := s.transition(ctx, absence, models.AbsenceUnjustified, justifyConflict); err != nil {
		return nil, err
	}
	return absence, nil
}

func justifyConflict(absence *models.Absence) error {
	if absence.IsDeleted() {
		return apperrors.NewConflictError("Absence has been deleted")
	}
	if absence.State() != models.AbsenceUnjustified {
		return apperrors.NewConflictError("Absence has already been justified")
	}
	return nil
}

// reviewConflict checks the shared validate/reject preconditions on the absence state
func reviewConflict(action string) func(*models.Absence) error {
	return func(absence *models.Absence) error {
		if absence.IsDeleted() {
			return apperrors.NewConflictError("Absence has been deleted")
		}
		switch absence.State() {
		case models.AbsenceValidated:
			return apperrors.NewConflictError("Absence has already been validated")
		case models.AbsenceUnjustified:
			return apperrors.NewConflictError("No justification to " + action)
		}
		return nil
	}
}

// transition stores the new justification fields only if the absence is still in state from.
// When a concurrent request moved it first, the fresh row decides which conflict is reported.
func (s *absenceServiceImpl) transition(ctx context.Context, absence *models.Absence, from models.AbsenceState, conflict func(*models.Absence) error) error {
	updated, err := s.absenceRepo.Transition(ctx, absence, from)
	if err != nil {
		return fmt.Errorf("failed to update absence: %w", err)
	}
	if updated {
		return nil
	}

	current, err := s.load(ctx, absence.ID)
	if err != nil {
		return err
	}
	if err := conflict(current); err != nil {
		return err
	}
	return apperrors.NewConflictError("Absence was modified by another request")
}

// review loads an absence for its course teacher and checks the shared validate/reject preconditions
func (s *absenceServiceImpl) review(ctx context.Context, principal models.Principal, absenceID int64, action string) (*models.Absence, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}

	absence, err := s.load(ctx, absenceID)
	if err != nil {
		return nil, err
	}
	if absence.IsDeleted() {
		return nil, apperrors.NewConflictError("Absence has been deleted")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, absence.CourseID, models.MembershipTeacher); err != nil {
		return nil, err
	}
	if err := reviewConflict(action)(absence); err != nil {
		return nil, err
	}
	return absence, nil
}

func (s *absenceServiceImpl) ValidateAbsence(ctx context.Context, principal models.Principal, absenceID int64) (*models.Absence, error) {
	absence, err := s.review(ctx, principal, absenceID, "validate")
	if err != nil {
		return nil, err
	}

	absence.Justified = true
	absence.Justification = nil
	if err := s.transition(ctx, absence, models.AbsencePending, reviewConflict("validate")); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("absenceId", absence.ID).Msg("Absence justification validated")
	return absence, nil
}

func (s *absenceServiceImpl) RejectAbsence(ctx context.Context, principal models.Principal, absenceID int64) (*models.Absence, error) {
	absence, err := s.review(ctx, principal, absenceID, "reject")
	if err != nil {
		return nil, err
	}

	absence.Justified = false
	absence.Justification = nil
	if err := s.transition(ctx, absence, models.AbsencePending, reviewConflict("reject")); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("absenceId", absence.ID).Msg("Absence justification rejected")
	return absence, nil
}

func (s *absenceServiceImpl) DeleteAbsence(ctx context.Context, principal models.Principal, absenceID int64) error {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return err
	}

	absence, err := s.load(ctx, absenceID)
	if err != nil {
		return err
	}
	if absence.IsDeleted() {
		return apperrors.NewResourceNotFoundError("Absence not found")
	}
	if _, err := s.membership.RequireMembership(ctx, principal, absence.CourseID, models.MembershipTeacher); err != nil {
		return err
	}
	if err := s.absenceRepo.SoftDelete(ctx, absence.ID); err != nil {
		return notFound(err, "Absence not found")
	}
	return nil
}

func filterFromQuery(query dto.AbsenceQuery) (models.AbsenceFilter, error) {
	var filter models.AbsenceFilter
	if query.StudentID != "" {
		id, err := uuid.Parse(query.StudentID)
		if err != nil {
			return filter, apperrors.NewInvalidArgumentError("Invalid student ID")
		}
		filter.StudentID = &id
	}
	if query.CourseID > 0 {
		courseID := query.CourseID
		filter.CourseID = &courseID
	}
	if query.From != "" {
		from, err := helpers.ParseDateOrTime(query.From)
		if err != nil {
			return filter, apperrors.NewInvalidArgumentError("Invalid from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := helpers.ParseDateOrTime(query.To)
		if err != nil {
			return filter, apperrors.NewInvalidArgumentError("Invalid to date")
		}
		filter.To = &to
	}
	return filter, nil
}

func (s *absenceServiceImpl) ListForTeacher(ctx context.Context, principal models.Principal, query dto.AbsenceQuery) ([]models.Absence, error) {
	if err := appauth.RequireRole(principal, models.UserTypeTeacher); err != nil {
		return nil, err
	}
	filter, err := filterFromQuery(query)
	if err != nil {
		return nil, err
	}
	filter.TeacherID = &principal.ID
	return s.absenceRepo.List(ctx, filter)
}

func (s *absenceServiceImpl) ListForStudent(ctx context.Context, principal models.Principal, query dto.AbsenceQuery) ([]models.Absence, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return nil, err
	}
	filter, err := filterFromQuery(query)
	if err != nil {
		return nil, err
	}
	filter.StudentID = &principal.ID
	return s.absenceRepo.List(ctx, filter)
}

func (s *absenceServiceImpl) CountForStudentCourse(ctx context.Context, principal models.Principal, courseID int64) (*dto.AbsenceCountResponse, error) {
	if _, err := s.membership.RequireMembership(ctx, principal, courseID, models.MembershipStudent); err != nil {
		return nil, err
	}
	count, err := s.absenceRepo.CountForStudentInCourse(ctx, principal.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count absences: %w", err)
	}
	return &dto.AbsenceCountResponse{CourseID: courseID, AbsenceCount: count}, nil
}

func (s *absenceServiceImpl) SummaryForStudent(ctx context.Context, principal models.Principal) ([]models.CourseAbsenceCount, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return nil, err
	}
	return s.absenceRepo.CountByStudent(ctx, principal.ID)
}

func (s *absenceServiceImpl) CourseStudentCounts(ctx context.Context, principal models.Principal, courseID int64) (*dto.CourseAbsencesResponse, error) {
	if _, err := s.membership.RequireMembership(ctx, principal, courseID, models.MembershipTeacher); err != nil {
		return nil, err
	}
	counts, err := s.absenceRepo.CountByCourseStudent(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count course absences: %w", err)
	}
	return &dto.CourseAbsencesResponse{CourseID: courseID, Students: counts}, nil
}

func (s *absenceServiceImpl) UnjustifiedCount(ctx context.Context, principal models.Principal) (int64, error) {
	if err := appauth.RequireRole(principal, models.UserTypeStudent); err != nil {
		return 0, err
	}
	return s.absenceRepo.CountUnjustified(ctx, principal.ID)
}
