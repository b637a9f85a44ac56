package comment

import (
	"time"

	"photoshare/internal/domain/upload"
)

// Comment is append-only and lives as long as its upload.
type Comment struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UploadID  uint64         `gorm:"column:upload_id;not null;index" json:"upload_id"`
	Upload    *upload.Upload `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"-"`
	Name      string         `gorm:"column:name;size:120" json:"name"`
	Comment   string         `gorm:"column:comment;type:text;not null" json:"comment"`
	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (Comment) TableName() string { return "upload_comments" }
