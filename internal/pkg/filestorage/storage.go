package filestorage

import (
	"mime/multipart"
)

// StoredFile describes a file written to storage
type StoredFile struct {
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile writes the upload under a generated name
	SaveFile(fileHeader *multipart.FileHeader) (*StoredFile, error)

	// DeleteFile removes a stored file. Missing files are not an error.
	DeleteFile(storedName string) error

	// GetFullPath returns the filesystem path of a stored file
	GetFullPath(storedName string) string
}
