package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrTenantNotFound     = errors.New("tenant not found")

	// ErrFileBusy signals that another worker holds the file's
	// processing slot; the caller should surface 409 rather than retry.
	ErrFileBusy = errors.New("file is already being processed")

	// ErrNoExtraction is returned when prediction is requested for a
	// file that has no completed extraction yet.
	ErrNoExtraction = errors.New("no completed extraction for file")

	ErrNothingToExport = errors.New("no exportable entries in selection")
	ErrExportExpired   = errors.New("export not found or expired")

	ErrNotDiscrepancy = errors.New("only discrepancy reconciliations can be resolved")
	ErrEmptyNote      = errors.New("resolution note is required")
)
