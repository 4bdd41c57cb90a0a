package v1

import (
	"errors"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

// respondOK writes a success envelope with the given top-level fields.
func respondOK(c *gin.Context, fields gin.H) {
	body := gin.H{"status": statusSuccess}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: statusError, Message: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
			Status:  statusError,
			Message: "validation failed",
			Fields:  validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, diagnosis.ErrSymptomsRequired),
		errors.Is(err, patient.ErrInvalidAge),
		errors.Is(err, patient.ErrInvalidGender):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, patient.ErrPatientNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, patient.ErrPatientAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Status:  statusError,
			Message: err.Error(),
			Code:    "PATIENT_EXISTS",
		})

	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "access denied")

	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")

	case errors.Is(err, auth.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Status:  statusError,
			Message: "token expired",
			Code:    "TOKEN_EXPIRED",
		})

	case errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch):
		respondError(c, http.StatusUnauthorized, "invalid token")

	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}
