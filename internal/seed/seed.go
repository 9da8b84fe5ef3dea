package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/classroom/internal/app/models"
	appRepos "github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/auth"
)

// DemoPassword is shared by every seeded account
const DemoPassword = "Classroom123!"

type demoUser struct {
	firstName string
	lastName  string
	email     string
	userType  appModels.UserType
	group     string
}

var demoUsers = []demoUser{
	{firstName: "Demo", lastName: "Teacher", email: "teacher@classroom.local", userType: appModels.UserTypeTeacher},
	{firstName: "Demo", lastName: "Student", email: "student@classroom.local", userType: appModels.UserTypeStudent, group: "A1"},
}

// CreateDemoUsers inserts one teacher and one student unless their emails are already taken.
func CreateDemoUsers(ctx context.Context, users appRepos.IUserRepository, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo users...")

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	var finalErr error
	for _, d := range demoUsers {
		_, err := users.GetByEmail(ctx, d.email)
		if err == nil {
			lgr.Debug().Str("email", d.email).Msg("Demo user already exists")
			continue
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error checking demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		user := &appModels.User{
			FirstName:    d.firstName,
			LastName:     d.lastName,
			Email:        d.email,
			PasswordHash: hash,
			Type:         d.userType,
		}
		if d.group != "" {
			group := d.group
			user.Group = &group
		}
		if err := users.Create(ctx, user); err != nil {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("email", d.email).Str("type", string(d.userType)).Msg("Demo user created")
	}

	return finalErr
}
