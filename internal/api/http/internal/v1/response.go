package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, status int, code ErrorCode) {
	c.AbortWithStatusJSON(status, getErrorStruct(code))
}

// serviceErrorResponse renders a service error by its kind. Causes of
// dependency failures are logged and never sent to the client.
func serviceErrorResponse(c *gin.Context, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		logger.Error("unexpected service error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
		)
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	var verr validator.ValidationErrors
	if domainErr.Kind == domain.KindValidation && errors.As(err, &verr) {
		validationErrorResponse(c, verr)
		return
	}

	mapping, ok := kindMappings[domainErr.Kind]
	if !ok {
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	if mapping.status >= http.StatusInternalServerError || domainErr.Kind == domain.KindPartialFailure {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("kind", string(domainErr.Kind)),
			zap.String("path", c.FullPath()),
		)
	}

	response := getErrorStruct(mapping.code)
	if mapping.echoMessage && domainErr.Message != "" {
		response.ErrorMessage = ErrorMessage(domainErr.Message)
	}
	response.Details = domainErr.Details

	c.AbortWithStatusJSON(mapping.status, response)
}

// bindErrorResponse answers a request whose body or query did not bind.
func bindErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		validationErrorResponse(c, verr)
		return
	}

	errorResponse(c, http.StatusBadRequest, InvalidRequestCode)
}

func validationErrorResponse(c *gin.Context, verr validator.ValidationErrors) {
	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}
	response := ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
	}
	response.Errors = out
	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "number":
		return "This field must be a number"
	case "min":
		return fmt.Sprintf("Minimum length is %v", value)
	case "max":
		return fmt.Sprintf("Maximum length is %v", value)
	case "gt":
		return fmt.Sprintf("Must be greater than %v", value)
	case "lte":
		return fmt.Sprintf("Must be at most %v", value)
	case "mobile":
		return "Mobile number must have 9 digits"
	case "category":
		return "Unknown category"
	case "district":
		return "Unknown district"
	case "forwhom":
		return "Unknown audience"
	case "role":
		return "Unknown role"
	}
	return tag
}

type messageResponse struct {
	Message string `json:"message"`
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
