package services

import (
	"context"

	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
)

// UserService serves account profiles
type UserService interface {
	GetProfile(ctx context.Context, principal models.Principal) (*models.User, error)
}

type userServiceImpl struct {
	userRepo repositories.IUserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, principal models.Principal) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}
