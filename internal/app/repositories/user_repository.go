package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/db"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/dberrors"
)

var userColumns = []string{
	"u.id", "u.first_name", "u.last_name", "u.email", "u.password", "u.type",
	"u.student_group", "u.created_at", "u.updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Type,
		&u.Group, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills its generated id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sqlStr, args, err := toSQL(psql.Insert("users").
		Columns("first_name", "last_name", "email", "password", "type", "student_group").
		Values(user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Type, user.Group).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}

	err = r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintUserEmail) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sqlStr, args, err := toSQL(psql.Select(userColumns...).
		From("users u").
		Where(where).
		Where("u.deleted_at IS NULL"))
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// GetByID retrieves an active user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves an active user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(u.email) = LOWER(?)", email))
}
