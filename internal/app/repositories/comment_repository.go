package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/db"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// CommentRepository handles post comment database operations
type CommentRepository struct {
	db *db.PostgresDB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(database *db.PostgresDB) *CommentRepository {
	return &CommentRepository{db: database}
}

func (r *CommentRepository) selectComments() squirrel.SelectBuilder {
	return psql.Select(
		"cm.id", "cm.post_id", "cm.author_id", "cm.content", "cm.created_at",
		"u.first_name", "u.last_name", "u.email", "u.student_group",
	).
		From("comments cm").
		Join("posts p ON p.id = cm.post_id AND p.deleted_at IS NULL").
		Join("users u ON u.id = cm.author_id").
		Where("cm.deleted_at IS NULL")
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sqlStr, args, err := toSQL(psql.Insert("comments").
		Columns("post_id", "author_id", "content").
		Values(comment.PostID, comment.AuthorID, comment.Content).
		Suffix("RETURNING id, created_at"))
	if err != nil {
		return err
	}
	if err := r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetByID returns an active comment of an active post
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	list, err := r.list(ctx, r.selectComments().Where(squirrel.Eq{"cm.id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.ErrResourceNotFound
	}
	return &list[0], nil
}

// ListByPost returns the comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	return r.list(ctx, r.selectComments().Where(squirrel.Eq{"cm.post_id": postID}).OrderBy("cm.created_at", "cm.id"))
}

// SoftDelete marks the comment as deleted
func (r *CommentRepository) SoftDelete(ctx context.Context, id int64) error {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("comments").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if n == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

func (r *CommentRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.Comment, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		author := models.UserSummary{}
		err := row.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
			&author.FirstName, &author.LastName, &author.Email, &author.Group,
		)
		author.ID = c.AuthorID
		c.Author = &author
		return c, err
	})
}
