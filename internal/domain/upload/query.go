package upload

import "context"

// SearchQuery filters uploads; empty fields impose no constraint.
type SearchQuery struct {
	Q   string
	Tag string
}

// List returns every upload, newest first.
func (s *Service) List(ctx context.Context) ([]Upload, error) {
	uploads, err := s.repo.List(ctx)
	return nonNil(uploads), err
}

func (s *Service) Get(ctx context.Context, id uint64) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Search matches q against title or description and tag against tags,
// both case-insensitively.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Upload, error) {
	uploads, err := s.repo.Search(ctx, q)
	return nonNil(uploads), err
}

// Leaderboard ranks by likes then downloads. month 0 means all months,
// otherwise only uploads made in that calendar month of any year.
func (s *Service) Leaderboard(ctx context.Context, month int) ([]Upload, error) {
	if month < 0 || month > 12 {
		return nil, ErrInvalidMonth
	}
	uploads, err := s.repo.Leaderboard(ctx, month)
	return nonNil(uploads), err
}

func nonNil(uploads []Upload) []Upload {
	if uploads == nil {
		return []Upload{}
	}
	return uploads
}
