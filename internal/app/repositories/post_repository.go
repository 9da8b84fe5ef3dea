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

// PostRepository handles course post database operations
type PostRepository struct {
	db *db.PostgresDB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(database *db.PostgresDB) *PostRepository {
	return &PostRepository{db: database}
}

func (r *PostRepository) selectPosts() squirrel.SelectBuilder {
	return psql.Select("p.id", "p.course_id", "p.author_id", "p.content", "p.created_at").
		From("posts p").
		Join("courses c ON c.id = p.course_id AND c.deleted_at IS NULL").
		Where("p.deleted_at IS NULL")
}

// Create inserts the post and its attachments in one transaction
func (r *PostRepository) Create(ctx context.Context, post *models.Post, attachments []models.Upload) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sqlStr, args, err := toSQL(psql.Insert("posts").
			Columns("course_id", "author_id", "content").
			Values(post.CourseID, post.AuthorID, post.Content).
			Suffix("RETURNING id, created_at"))
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&post.ID, &post.CreatedAt); err != nil {
			return err
		}

		post.Attachments = setUploadOwner(attachments, func(u *models.Upload) { u.PostID = &post.ID })
		return insertUploads(ctx, tx, post.Attachments)
	})
	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID returns an active post with its attachments
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	list, err := r.list(ctx, r.selectPosts().Where(squirrel.Eq{"p.id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.ErrResourceNotFound
	}
	return &list[0], nil
}

// ListByCourse returns the course's posts, newest first
func (r *PostRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Post, error) {
	return r.list(ctx, r.selectPosts().Where(squirrel.Eq{"p.course_id": courseID}).OrderBy("p.created_at DESC", "p.id DESC"))
}

// SoftDelete marks the post as deleted
func (r *PostRepository) SoftDelete(ctx context.Context, id int64) error {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("posts").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if n == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

func (r *PostRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.Post, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Post, error) {
		var p models.Post
		err := row.Scan(&p.ID, &p.CourseID, &p.AuthorID, &p.Content, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	attachments, err := listUploadsByOwner(ctx, r.db.Pool, "post_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Attachments = attachments[list[i].ID]
	}
	return list, nil
}
