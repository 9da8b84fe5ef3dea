package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// UploadRepository implements repositories.IUploadRepository
type UploadRepository struct {
	s *Store
}

func (r *UploadRepository) Create(_ context.Context, uploads []models.Upload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.insertUploads(uploads, nil)
	return nil
}

func (r *UploadRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Upload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.uploads[id]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.ErrResourceNotFound
	}
	return &u, nil
}

func (r *UploadRepository) SoftDelete(_ context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if u, ok := r.s.uploads[id]; ok && u.DeletedAt == nil {
			u.DeletedAt = r.s.timestamp()
			r.s.uploads[id] = u
		}
	}
	return nil
}

// PostRepository implements repositories.IPostRepository
type PostRepository struct {
	s *Store
}

func (r *PostRepository) Create(_ context.Context, post *models.Post, attachments []models.Upload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post.ID = r.s.nextID()
	post.CreatedAt = r.s.now()
	id := post.ID
	post.Attachments = r.s.insertUploads(attachments, func(u *models.Upload) { u.PostID = &id })

	stored := *post
	stored.Attachments = nil
	r.s.posts[post.ID] = stored
	return nil
}

// activePost must be called with mu held
func (r *PostRepository) activePost(id int64) (models.Post, bool) {
	p, ok := r.s.posts[id]
	if !ok || p.DeletedAt != nil {
		return p, false
	}
	if _, ok := r.s.activeCourse(p.CourseID); !ok {
		return p, false
	}
	p.Attachments = r.s.uploadsOf(postOwner, p.ID)
	return p, true
}

func (r *PostRepository) GetByID(_ context.Context, id int64) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.activePost(id)
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &p, nil
}

func (r *PostRepository) ListByCourse(_ context.Context, courseID int64) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Post
	for id, p := range r.s.posts {
		if p.CourseID != courseID {
			continue
		}
		if p, ok := r.activePost(id); ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *PostRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || p.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	p.DeletedAt = r.s.timestamp()
	r.s.posts[id] = p
	return nil
}

// CommentRepository implements repositories.ICommentRepository
type CommentRepository struct {
	s *Store
}

func (r *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment.ID = r.s.nextID()
	comment.CreatedAt = r.s.now()
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	return nil
}

// activeComment must be called with mu held
func (r *CommentRepository) activeComment(id int64) (models.Comment, bool) {
	c, ok := r.s.comments[id]
	if !ok || c.DeletedAt != nil {
		return c, false
	}
	if p, ok := r.s.posts[c.PostID]; !ok || p.DeletedAt != nil {
		return c, false
	}
	if u, ok := r.s.users[c.AuthorID]; ok {
		summary := u.Summary()
		c.Author = &summary
	}
	return c, true
}

func (r *CommentRepository) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.activeComment(id)
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &c, nil
}

func (r *CommentRepository) ListByPost(_ context.Context, postID int64) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Comment
	for id, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		if c, ok := r.activeComment(id); ok {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *CommentRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	c.DeletedAt = r.s.timestamp()
	r.s.comments[id] = c
	return nil
}
