package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
)

// SignUpRequest registers a student or teacher
type SignUpRequest struct {
	FirstName string  `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=2,max=100"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	Type      string  `json:"type" binding:"required,usertype" example:"student"`
	Group     *string `json:"group,omitempty" binding:"omitempty,max=100"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Type      models.UserType `json:"type"`
	Group     *string         `json:"group,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewUserResponse maps a user to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Type:      u.Type,
		Group:     u.Group,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}
