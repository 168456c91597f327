package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"alcyxob/climb-tracker/internal/calendar"
	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/rollup"
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/stats"
	"alcyxob/climb-tracker/internal/storage"
	"alcyxob/climb-tracker/internal/timer"
)

var errorStatuses = []struct {
	err  error
	code int
}{
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrDataUnavailable, http.StatusServiceUnavailable},
	{domain.ErrTimeout, http.StatusGatewayTimeout},
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrBatchTooLarge, http.StatusRequestEntityTooLarge},
	{service.ErrImportAccessDenied, http.StatusForbidden},
	{service.ErrImportNotFound, http.StatusNotFound},
	{service.ErrInvalidImport, http.StatusUnprocessableEntity},
	{service.ErrDirectUploadUnsupported, http.StatusNotImplemented},
	{storage.ErrObjectTooLarge, http.StatusRequestEntityTooLarge},
	{stats.ErrUnknownMetric, http.StatusBadRequest},
	{calendar.ErrUnknownPeriod, http.StatusBadRequest},
	{rollup.ErrInvalidPeriods, http.StatusBadRequest},
	{timer.ErrAlreadyStarted, http.StatusConflict},
	{timer.ErrNotStarted, http.StatusConflict},
	{timer.ErrInvalidDuration, http.StatusBadRequest},
}

// abortWithServiceError maps a service error to a status code. Unknown
// errors are logged and reported as 500 without their text.
func abortWithServiceError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWithError(c, e.code, err.Error())
			return
		}
	}
	log.WithField("path", c.FullPath()).WithError(err).Error("unhandled service error")
	abortWithError(c, http.StatusInternalServerError, "Internal server error")
}
