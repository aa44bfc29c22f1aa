package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/service"
	"github.com/edflow/edflow/internal/triage"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrRecordNotFound),
		errors.Is(err, bed.ErrBedNotFound),
		errors.Is(err, alert.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrDuplicateProtocol):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, bed.ErrBedNotAvailable),
		errors.Is(err, bed.ErrBedNotOccupied),
		errors.Is(err, bed.ErrBedOccupied),
		errors.Is(err, bed.ErrBedAlreadyAvailable),
		errors.Is(err, bed.ErrPatientBedded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "BED_CONFLICT"})

	case errors.Is(err, patient.ErrIllegalStateTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "ILLEGAL_TRANSITION"})

	case errors.Is(err, triage.ErrOutOfBandPriority),
		errors.Is(err, triage.ErrInvalidAcuityLevel),
		errors.Is(err, alert.ErrInvalidKind),
		errors.Is(err, alert.ErrInvalidTraumaTier),
		errors.Is(err, patient.ErrInvalidArrivalMethod),
		errors.Is(err, patient.ErrInvalidDisposition):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrIneligibleForFastTrack):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "FAST_TRACK_INELIGIBLE"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
