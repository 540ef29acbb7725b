package store

import "errors"

var (
	// ErrNotFound is returned when a record file is absent.
	ErrNotFound = errors.New("record not found")
	// ErrBadRecord is returned when a file's content is not a JSON object.
	ErrBadRecord = errors.New("record is not a JSON object")
	// ErrKeyNotFound is returned when a key is absent from a record.
	ErrKeyNotFound = errors.New("key not found")
	// ErrExists is returned by Create when the record file already exists.
	ErrExists = errors.New("record already exists")
)
