package upload

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"photoshare/internal/pkg/blob"
)

// Like adds one like and returns the new total. Repeated calls keep counting.
func (s *Service) Like(ctx context.Context, id uint64) (int64, error) {
	if err := s.repo.IncrementLikes(ctx, id); err != nil {
		return 0, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.LikeCount, nil
}

// Download is an open blob ready to be streamed. Callers must close Content.
type Download struct {
	Upload  *Upload
	Content afero.File
}

// Download opens the blob of an upload and counts the download. A failed
// counter update is logged and the file is still served.
func (s *Service) Download(ctx context.Context, id uint64) (*Download, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := s.blobs.Open(u.Filename)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.log.Warn("upload row without blob", zap.Uint64("id", id), zap.String("filename", u.Filename))
			return nil, ErrBlobMissing
		}
		return nil, err
	}

	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		s.log.Error("failed to count download", zap.Uint64("id", id), zap.Error(err))
	}
	return &Download{Upload: u, Content: f}, nil
}

// UpdateInput carries the fields to change. Nil means "leave as is".
type UpdateInput struct {
	SecretCode  string
	Title       *string
	Description *string
	Tags        *string
}

func (in UpdateInput) fields() map[string]any {
	fields := make(map[string]any, 3)
	if in.Title != nil {
		if t := strings.TrimSpace(*in.Title); t != "" {
			fields["title"] = t
		}
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Tags != nil {
		fields["tags"] = *in.Tags
	}
	return fields
}

// Update changes metadata of an upload. The blob is never replaced.
func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) error {
	if strings.TrimSpace(in.SecretCode) == "" {
		return ErrMissingSecret
	}
	fields := in.fields()
	if len(fields) == 0 {
		return ErrNothingToUpdate
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(u, in.SecretCode); err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, id, fields)
}

// Delete removes the blob and then the row, whose comments cascade.
// A blob that cannot be removed does not keep the row alive.
func (s *Service) Delete(ctx context.Context, id uint64, secretCode string) error {
	if strings.TrimSpace(secretCode) == "" {
		return ErrMissingSecret
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(u, secretCode); err != nil {
		return err
	}

	s.removeBlob(u)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("upload deleted", zap.Uint64("id", id))
	return nil
}

func (s *Service) authorize(u *Upload, code string) error {
	if !s.auth.Authorize(u.ID, u.SecretCodeHash, code).Allowed() {
		return ErrForbidden
	}
	return nil
}
