// Package apperr holds the sentinel errors shared across the archiver.
package apperr

import "errors"

var (
	// ErrNotFound marks an expected path that is absent. Benign.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyArchived marks a destination that already exists. Benign.
	ErrAlreadyArchived = errors.New("already archived")
	// ErrMalformedName marks a directory name that is not a date folder.
	ErrMalformedName = errors.New("malformed folder name")
	// ErrBadReferenceDate marks an unparseable --date value.
	ErrBadReferenceDate = errors.New("bad reference date")
	// ErrMarkerMissing marks a derived document without a usable generated region.
	ErrMarkerMissing = errors.New("generated region marker missing")
	// ErrUsage marks an invocation that needs to print usage and exit non-zero.
	ErrUsage = errors.New("usage")
)
