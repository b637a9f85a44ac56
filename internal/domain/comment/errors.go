package comment

import "errors"

var (
	ErrEmptyComment   = errors.New("comment is required")
	ErrUploadNotFound = errors.New("upload not found")
)
