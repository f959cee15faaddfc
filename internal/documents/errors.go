package documents

import "errors"

var (
	ErrMissingFile = errors.New("file not selected")
	ErrFileType    = errors.New("invalid file format")
	ErrTooLarge    = errors.New("file too large")
)
