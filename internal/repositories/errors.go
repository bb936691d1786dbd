package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrStaleToken indicates a refresh-token rotation lost the compare-and-set
	// because the stored value no longer matches the presented one.
	ErrStaleToken = errors.New("stored refresh token changed")
)
