package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"photoshare/internal/database"
)

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	GetByID(ctx context.Context, id uint64) (*Upload, error)
	List(ctx context.Context) ([]Upload, error)
	Search(ctx context.Context, q SearchQuery) ([]Upload, error)
	Leaderboard(ctx context.Context, month int) ([]Upload, error)
	IncrementLikes(ctx context.Context, id uint64) error
	IncrementDownloads(ctx context.Context, id uint64) error
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error
	Delete(ctx context.Context, id uint64) error
	ListExpired(ctx context.Context, now time.Time) ([]Upload, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AutoMigrate creates or updates the uploads table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Upload{})
}

func (r *repository) Create(ctx context.Context, u *Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) GetByID(ctx context.Context, id uint64) (*Upload, error) {
	var u Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]Upload, error) {
	var uploads []Upload
	err := r.db.WithContext(ctx).Order("upload_date DESC").Order("id DESC").Find(&uploads).Error
	return uploads, err
}

// Search folds case on both sides with the same Unicode-aware function, so
// the match does not depend on the dialect's built-in LOWER.
func (r *repository) Search(ctx context.Context, q SearchQuery) ([]Upload, error) {
	lower := database.LowerFunc(r.db)
	tx := r.db.WithContext(ctx).Model(&Upload{})
	if q.Q != "" {
		p := likePattern(q.Q)
		tx = tx.Where(
			fmt.Sprintf(`(%[1]s(title) LIKE ? ESCAPE '\' OR %[1]s(COALESCE(description, '')) LIKE ? ESCAPE '\')`, lower),
			p, p,
		)
	}
	if q.Tag != "" {
		tx = tx.Where(fmt.Sprintf(`%s(COALESCE(tags, '')) LIKE ? ESCAPE '\'`, lower), likePattern(q.Tag))
	}

	var uploads []Upload
	err := tx.Order("upload_date DESC").Order("id DESC").Find(&uploads).Error
	return uploads, err
}

func (r *repository) Leaderboard(ctx context.Context, month int) ([]Upload, error) {
	tx := r.db.WithContext(ctx).Model(&Upload{})
	if month != 0 {
		tx = tx.Where(r.monthExpr()+" = ?", month)
	}

	var uploads []Upload
	err := tx.Order("like_count DESC").Order("download_count DESC").Order("id ASC").Find(&uploads).Error
	return uploads, err
}

func (r *repository) monthExpr() string {
	if r.db.Dialector.Name() == "postgres" {
		return "CAST(EXTRACT(MONTH FROM upload_date) AS INTEGER)"
	}
	return "CAST(strftime('%m', upload_date) AS INTEGER)"
}

func (r *repository) IncrementLikes(ctx context.Context, id uint64) error {
	return r.increment(ctx, id, "like_count")
}

func (r *repository) IncrementDownloads(ctx context.Context, id uint64) error {
	return r.increment(ctx, id, "download_count")
}

// increment is a relative update so concurrent calls never lose a count.
func (r *repository) increment(ctx context.Context, id uint64, column string) error {
	tx := r.db.WithContext(ctx).
		Model(&Upload{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&Upload{}).Where("id = ?", id).UpdateColumns(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row; comments go with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id uint64) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Upload{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListExpired(ctx context.Context, now time.Time) ([]Upload, error) {
	var uploads []Upload
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Order("expires_at ASC").
		Find(&uploads).Error
	return uploads, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern with wildcards in
// the user input escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
