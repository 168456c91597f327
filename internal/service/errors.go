package service

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/domain"
)

// --- Error Definitions ---
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrBatchTooLarge      = errors.New("sample batch too large")
	ErrImportAccessDenied = errors.New("import object does not belong to user")
	ErrImportNotFound     = errors.New("import object not found")
	ErrInvalidImport      = errors.New("import file could not be decoded")

	ErrDirectUploadUnsupported = errors.New("storage backend takes uploads through presigned URLs only")
)

// degraded reports whether err is a source failure that the dashboard
// turns into an empty, degraded result. Such failures are logged here.
func degraded(err error, fields log.Fields) bool {
	if errors.Is(err, domain.ErrDataUnavailable) || errors.Is(err, domain.ErrTimeout) {
		log.WithFields(fields).WithError(err).Warn("health data degraded, returning empty result")
		return true
	}
	return false
}
