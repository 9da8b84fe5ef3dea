// Package services implements the classroom use cases. Every call takes the
// authenticated caller explicitly as a models.Principal.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// EventPublisher delivers course activity to connected members
type EventPublisher interface {
	Publish(event models.CourseEvent)
}

// Membership resolves a caller's relation to a course
type Membership interface {
	IsMember(ctx context.Context, userID uuid.UUID, courseID int64) (models.Membership, error)
	RequireMembership(ctx context.Context, principal models.Principal, courseID int64, want ...models.Membership) (models.Membership, error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.CourseEvent) {}

// Option configures optional service collaborators
type Option func(*options)

type options struct {
	now       func() time.Time
	publisher EventPublisher
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithPublisher sets the course activity publisher
func WithPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, publisher: noopPublisher{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// notFound turns a bare repository not-found into a message-carrying error
func notFound(err error, message string) error {
	if errors.Is(err, apperrors.ErrResourceNotFound) || errors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return err
}

func publish(p EventPublisher, now time.Time, typ models.CourseEventType, courseID int64, actor uuid.UUID, payload interface{}) {
	p.Publish(models.CourseEvent{
		Type:      typ,
		CourseID:  courseID,
		ActorID:   actor,
		Payload:   payload,
		Timestamp: now,
	})
}
