// Package auth holds the course-level authorization checks shared by the services.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// MembershipService resolves how a user relates to a course.
// Every call reads the current persisted state.
type MembershipService struct {
	courses repositories.ICourseRepository
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(courses repositories.ICourseRepository) *MembershipService {
	return &MembershipService{courses: courses}
}

// IsMember returns teacher, student or none for the user in the course
func (s *MembershipService) IsMember(ctx context.Context, userID uuid.UUID, courseID int64) (models.Membership, error) {
	if userID == uuid.Nil || courseID <= 0 {
		return models.MembershipNone, apperrors.NewInvalidArgumentError("User ID and course ID are required")
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return models.MembershipNone, apperrors.NewResourceNotFoundError("Course not found")
		}
		return models.MembershipNone, fmt.Errorf("error loading course: %w", err)
	}

	if course.TeacherID == userID {
		return models.MembershipTeacher, nil
	}

	enrolled, err := s.courses.IsStudentEnrolled(ctx, courseID, userID)
	if err != nil {
		return models.MembershipNone, fmt.Errorf("error checking enrollment: %w", err)
	}
	if enrolled {
		return models.MembershipStudent, nil
	}
	return models.MembershipNone, nil
}

// RequireMembership fails with Forbidden unless the principal holds one of want in the course.
// With no want, any membership is accepted.
func (s *MembershipService) RequireMembership(ctx context.Context, principal models.Principal, courseID int64, want ...models.Membership) (models.Membership, error) {
	membership, err := s.IsMember(ctx, principal.ID, courseID)
	if err != nil {
		return membership, err
	}

	if len(want) == 0 {
		if !membership.IsMember() {
			return membership, apperrors.NewForbiddenError("You are not a member of this course")
		}
		return membership, nil
	}

	if !slices.Contains(want, membership) {
		if len(want) == 1 && want[0] == models.MembershipTeacher {
			return membership, apperrors.NewForbiddenError("You are not the teacher of this course")
		}
		if len(want) == 1 && want[0] == models.MembershipStudent {
			return membership, apperrors.NewForbiddenError("You are not enrolled in this course")
		}
		return membership, apperrors.NewForbiddenError("You are not a member of this course")
	}
	return membership, nil
}

// RequireRole fails with Forbidden unless the principal has the given account type
func RequireRole(principal models.Principal, role models.UserType) error {
	if principal.Type != role {
		return apperrors.NewForbiddenError(fmt.Sprintf("Only a %s can perform this action", role))
	}
	return nil
}
