package comment

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	ListByUpload(ctx context.Context, uploadID uint64) ([]Comment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AutoMigrate creates the comments table. The uploads table must exist first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Comment{})
}

func (r *repository) Create(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Omit("Upload").Create(c).Error
}

func (r *repository) ListByUpload(ctx context.Context, uploadID uint64) ([]Comment, error) {
	var rows []Comment
	err := r.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
