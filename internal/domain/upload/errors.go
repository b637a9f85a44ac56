package upload

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every client-side input error.
var ErrValidation = errors.New("validation failed")

var (
	ErrNoFile            = fmt.Errorf("%w: no file provided", ErrValidation)
	ErrNotImage          = fmt.Errorf("%w: only image files are allowed", ErrValidation)
	ErrEmptyFile         = fmt.Errorf("%w: file is empty", ErrValidation)
	ErrFileTooLarge      = fmt.Errorf("%w: file exceeds maximum allowed size", ErrValidation)
	ErrMissingTitle      = fmt.Errorf("%w: title is required", ErrValidation)
	ErrMissingUploader   = fmt.Errorf("%w: uploader_name is required", ErrValidation)
	ErrInvalidAutoDelete = fmt.Errorf("%w: auto_delete must be one of none, 1d, 1w, 2w, 1m", ErrValidation)
	ErrInvalidMonth      = fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	ErrMissingSecret     = fmt.Errorf("%w: secret_code is required", ErrValidation)
	ErrNothingToUpdate   = fmt.Errorf("%w: nothing to update", ErrValidation)
)

var (
	ErrNotFound    = errors.New("upload not found")
	ErrBlobMissing = errors.New("upload file is missing")
	ErrForbidden   = errors.New("invalid secret code")
)
