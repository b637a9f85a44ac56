package comment

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"photoshare/internal/domain/upload"
)

// Storage clamps, in runes. Longer input is cut, not rejected.
const (
	MaxNameLength    = 120
	MaxCommentLength = 4000
)

// UploadLookup is the part of the upload service comments depend on.
type UploadLookup interface {
	Get(ctx context.Context, id uint64) (*upload.Upload, error)
}

type Service struct {
	repo    Repository
	uploads UploadLookup
	now     func() time.Time
}

func NewService(repo Repository, uploads UploadLookup) *Service {
	return &Service{repo: repo, uploads: uploads, now: time.Now}
}

// List returns the comments of an upload, newest first.
func (s *Service) List(ctx context.Context, uploadID uint64) ([]Comment, error) {
	rows, err := s.repo.ListByUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Comment{}
	}
	return rows, nil
}

type AddInput struct {
	Name    string
	Comment string
}

// Add stores a comment and returns its id.
func (s *Service) Add(ctx context.Context, uploadID uint64, in AddInput) (uint64, error) {
	text := strings.TrimSpace(in.Comment)
	if text == "" {
		return 0, ErrEmptyComment
	}

	if _, err := s.uploads.Get(ctx, uploadID); err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			return 0, ErrUploadNotFound
		}
		return 0, err
	}

	c := &Comment{
		UploadID:  uploadID,
		Name:      truncate(strings.TrimSpace(in.Name), MaxNameLength),
		Comment:   truncate(text, MaxCommentLength),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
