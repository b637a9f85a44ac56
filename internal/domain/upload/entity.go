package upload

import "time"

// Upload is one shared image plus its metadata. The blob lives in the blob
// store under Filename; OriginalName is only used as the download name.
type Upload struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          string     `gorm:"column:title;not null" json:"title"`
	Description    string     `gorm:"column:description;type:text" json:"description"`
	Tags           string     `gorm:"column:tags" json:"tags"`
	Filename       string     `gorm:"column:filename;uniqueIndex;not null" json:"filename"`
	OriginalName   string     `gorm:"column:original_name" json:"original_name"`
	MimeType       string     `gorm:"column:mime_type" json:"mime_type"`
	Size           int64      `gorm:"column:size" json:"size"`
	UploaderName   string     `gorm:"column:uploader_name;not null" json:"uploader_name"`
	LikeCount      int64      `gorm:"column:like_count;not null;default:0" json:"like_count"`
	DownloadCount  int64      `gorm:"column:download_count;not null;default:0" json:"download_count"`
	UploadDate     time.Time  `gorm:"column:upload_date;not null;index" json:"upload_date"`
	SecretCodeHash string     `gorm:"column:secret_code_hash;not null" json:"-"`
	ExpiresAt      *time.Time `gorm:"column:expires_at;index" json:"expires_at"`
}

func (Upload) TableName() string { return "uploads" }
