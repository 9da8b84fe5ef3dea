package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/filestorage"
)

// UploadLimits bounds one multipart request
type UploadLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

// UploadService stores files and their metadata
type UploadService interface {
	// SaveFiles writes files to storage and returns unpersisted upload records.
	// On failure every file already written is removed.
	SaveFiles(ctx context.Context, uploader models.Principal, files []*multipart.FileHeader) ([]models.Upload, error)
	// DeleteUploads removes stored files. Failures are logged, never returned.
	DeleteUploads(ctx context.Context, uploads []models.Upload)
	// Upload stores files and persists them without an owner
	Upload(ctx context.Context, uploader models.Principal, files []*multipart.FileHeader) ([]models.Upload, error)
	// Open returns an upload and the path of its content
	Open(ctx context.Context, id uuid.UUID) (*models.Upload, string, error)
}

type uploadServiceImpl struct {
	uploadRepo repositories.IUploadRepository
	storage    filestorage.FileStorage
	limits     UploadLimits
	logger     zerolog.Logger
	opts       options
}

// NewUploadService creates a new UploadService
func NewUploadService(
	uploadRepo repositories.IUploadRepository,
	storage filestorage.FileStorage,
	limits UploadLimits,
	logger zerolog.Logger,
	opts ...Option,
) UploadService {
	return &uploadServiceImpl{
		uploadRepo: uploadRepo,
		storage:    storage,
		limits:     limits,
		logger:     logger,
		opts:       buildOptions(opts),
	}
}

func (s *uploadServiceImpl) checkLimits(files []*multipart.FileHeader) error {
	if s.limits.MaxFiles > 0 && len(files) > s.limits.MaxFiles {
		return apperrors.NewInvalidArgumentError(fmt.Sprintf("At most %d files can be uploaded at once", s.limits.MaxFiles))
	}
	for _, fh := range files {
		if s.limits.MaxFileSize > 0 && fh.Size > s.limits.MaxFileSize {
			return apperrors.NewInvalidArgumentError(fmt.Sprintf("File %s exceeds the maximum size of %d bytes", fh.Filename, s.limits.MaxFileSize))
		}
	}
	return nil
}

func (s *uploadServiceImpl) SaveFiles(ctx context.Context, uploader models.Principal, files []*multipart.FileHeader) ([]models.Upload, error) {
	if err := s.checkLimits(files); err != nil {
		return nil, err
	}

	uploads := make([]models.Upload, 0, len(files))
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			s.DeleteUploads(ctx, uploads)
			return nil, err
		}

		stored, err := s.storage.SaveFile(fh)
		if err != nil {
			s.DeleteUploads(ctx, uploads)
			return nil, apperrors.NewInternalError("Failed to store file", err)
		}
		uploads = append(uploads, models.Upload{
			ID:           uuid.New(),
			OriginalName: stored.OriginalName,
			StoredName:   stored.StoredName,
			MimeType:     stored.MimeType,
			Size:         stored.Size,
			UploaderID:   uploader.ID,
			CreatedAt:    s.opts.now(),
		})
	}
	return uploads, nil
}

func (s *uploadServiceImpl) DeleteUploads(_ context.Context, uploads []models.Upload) {
	for _, u := range uploads {
		if err := s.storage.DeleteFile(u.StoredName); err != nil {
			s.logger.Error().Err(err).
				Str("uploadId", u.ID.String()).
				Str("storedName", u.StoredName).
				Msg("Failed to delete stored file")
		}
	}
}

func (s *uploadServiceImpl) Upload(ctx context.Context, uploader models.Principal, files []*multipart.FileHeader) ([]models.Upload, error) {
	if len(files) == 0 {
		return nil, apperrors.NewInvalidArgumentError("At least one file is required")
	}

	uploads, err := s.SaveFiles(ctx, uploader, files)
	if err != nil {
		return nil, err
	}
	if err := s.uploadRepo.Create(ctx, uploads); err != nil {
		s.DeleteUploads(ctx, uploads)
		return nil, apperrors.NewInternalError("Failed to save upload records", err)
	}
	return uploads, nil
}

func (s *uploadServiceImpl) Open(ctx context.Context, id uuid.UUID) (*models.Upload, string, error) {
	upload, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", notFound(err, "File not found")
	}
	return upload, s.storage.GetFullPath(upload.StoredName), nil
}
