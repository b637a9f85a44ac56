package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"photoshare/internal/pkg/blob"
	"photoshare/internal/pkg/secretcode"
)

const DefaultMaxFileSize = 50 * 1024 * 1024 // 50 MB

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxFileSize int64
	HashCost    int
	Now         func() time.Time
}

// Service implements creation, queries and mutations of uploads.
type Service struct {
	repo     Repository
	blobs    *blob.Store
	auth     *secretcode.Authorizer
	log      *zap.Logger
	maxSize  int64
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, blobs *blob.Store, auth *secretcode.Authorizer, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		auth:     auth,
		log:      log,
		maxSize:  opts.MaxFileSize,
		hashCost: opts.HashCost,
		now:      opts.Now,
	}
}

func (s *Service) MaxFileSize() int64 { return s.maxSize }

// CreateInput is the multipart upload request.
type CreateInput struct {
	File         *multipart.FileHeader
	Title        string
	Description  string
	Tags         string
	UploaderName string
	AutoDelete   string
}

// CreateResult is returned once; the secret code cannot be fetched again.
type CreateResult struct {
	ID         uint64     `json:"id"`
	Filename   string     `json:"filename"`
	SecretCode string     `json:"secret_code"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// Create validates the request, stores the blob, issues a secret code and
// inserts the row. The blob is removed again if the insert fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.File == nil {
		return nil, ErrNoFile
	}
	if !isImageType(in.File.Header.Get("Content-Type")) {
		return nil, ErrNotImage
	}
	if in.File.Size == 0 {
		return nil, ErrEmptyFile
	}
	if in.File.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	uploader := strings.TrimSpace(in.UploaderName)
	if uploader == "" {
		return nil, ErrMissingUploader
	}

	now := s.now().UTC()
	expiresAt, err := ExpiryFor(in.AutoDelete, now)
	if err != nil {
		return nil, err
	}

	file, err := in.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind uploaded file: %w", err)
	}

	name := s.blobs.GenerateName(in.File.Filename)
	size, err := s.blobs.Save(name, file)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	code, err := secretcode.Generate()
	if err != nil {
		s.discardBlob(name)
		return nil, err
	}
	hash, err := secretcode.Hash(code, s.hashCost)
	if err != nil {
		s.discardBlob(name)
		return nil, err
	}

	u := &Upload{
		Title:          title,
		Description:    in.Description,
		Tags:           in.Tags,
		Filename:       name,
		OriginalName:   in.File.Filename,
		MimeType:       detected.String(),
		Size:           size,
		UploaderName:   uploader,
		UploadDate:     now,
		SecretCodeHash: hash,
		ExpiresAt:      expiresAt,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.discardBlob(name)
		return nil, fmt.Errorf("save upload record: %w", err)
	}

	s.log.Info("upload created",
		zap.Uint64("id", u.ID),
		zap.String("filename", name),
		zap.String("size", humanize.Bytes(uint64(size))),
		zap.Timep("expires_at", expiresAt),
	)

	return &CreateResult{
		ID:         u.ID,
		Filename:   name,
		SecretCode: code,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *Service) discardBlob(name string) {
	if err := s.blobs.Remove(name); err != nil {
		s.log.Error("failed to roll back blob", zap.String("filename", name), zap.Error(err))
	}
}

// removeBlob deletes the blob of u. Only unexpected failures are reported;
// they are logged and never stop the row from being removed.
func (s *Service) removeBlob(u *Upload) {
	if err := s.blobs.Remove(u.Filename); err != nil {
		s.log.Error("failed to remove blob",
			zap.Uint64("id", u.ID),
			zap.String("filename", u.Filename),
			zap.Error(err),
		)
	}
}

// isImageType checks the content type declared by the client.
func isImageType(declared string) bool {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
