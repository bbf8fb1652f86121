package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoiceguard/internal/domain"
	"invoiceguard/internal/port"
)

// FileUploadInput is the DTO for file upload requests.
type FileUploadInput struct {
	UploadedBy string
	File       multipart.File
	Header     *multipart.FileHeader
}

// StoredFile is an uploaded file's metadata together with its bytes.
type StoredFile struct {
	Meta  *domain.FileMeta
	Bytes []byte
}

// FileService stores invoice files and reads them back.
type FileService interface {
	Store(ctx context.Context, input FileUploadInput) (*StoredFile, error)
	Fetch(ctx context.Context, fileID uuid.UUID) (*StoredFile, error)
	GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error)
}

// FileServiceConfig holds storage settings.
type FileServiceConfig struct {
	Bucket        string
	MaxFileSizeMB int64
	PresignExpiry int64
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      FileServiceConfig
	log      logrus.FieldLogger
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg FileServiceConfig,
	log logrus.FieldLogger,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
		log:      log,
	}
}

func (s *fileService) Store(ctx context.Context, input FileUploadInput) (*StoredFile, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// The header size is client-supplied; cap the read as well.
	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte content type detection
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detectedType := http.DetectContentType(head)
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("invoices/%s/%s", fileID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	meta := &domain.FileMeta{
		ID:           fileID,
		UploadedBy:   input.UploadedBy,
		FileName:     fileID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	log := s.log.WithField("file_id", fileID.String())
	log.Infof("fileService.Store: uploading file %s (%s, %d bytes) by %q",
		input.Header.Filename, contentType, meta.FileSize, input.UploadedBy)

	// Persist metadata with pending status
	if err := s.fileRepo.Create(ctx, meta); err != nil {
		log.WithError(err).Error("fileService.Store: failed to create file metadata")
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        meta.FileSize,
	})
	if err != nil {
		log.WithError(err).Error("fileService.Store: S3 upload failed")
		_ = s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded

	return &StoredFile{Meta: meta, Bytes: data}, nil
}

func (s *fileService) Fetch(ctx context.Context, fileID uuid.UUID) (*StoredFile, error) {
	meta, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("looking up file: %w", err)
	}
	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	return &StoredFile{Meta: meta, Bytes: data}, nil
}

func (s *fileService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	meta, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
}
