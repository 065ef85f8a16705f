package v1

import (
	"net/http"

	"github.com/bluehaven/rentals/internal/domain"
)

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	UserAlreadyExistsCode                 = 1001
	UserAlreadyExistsMessage              = "user already exists"
	UserNotFoundCode                      = 1002
	UserNotFoundMessage                   = "user not found"
	UserRefreshTokenCookieNotFoundCode    = 1003
	UserRefreshTokenCookieNotFoundMessage = "user refresh token cookie not found"
	UserRefreshTokenExpiredCode           = 1004
	UserRefreshTokenExpiredMessage        = "user refresh token expired"
	UnauthorizedCode                      = 1005
	UnauthorizedMessage                   = "unauthorized"
	ForbiddenCode                         = 1006
	ForbiddenMessage                      = "forbidden"

	NotFoundCode             = 2001
	NotFoundMessage          = "resource not found"
	InvalidOrExpiredCode     = 2002
	InvalidOrExpiredMessage  = "invalid or expired code"
	PartialFailureCode       = 2003
	PartialFailureMessage    = "operation partially completed"
	DependencyFailureCode    = 2004
	DependencyFailureMessage = "service temporarily unavailable"
	InvalidRequestCode       = 2005
	InvalidRequestMessage    = "invalid request"
	ValidationErrorCode      = 6000
	ValidationErrorMessage   = "Validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
	Details      any `json:"details,omitempty"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	switch code {
	case UserAlreadyExistsCode:
		errorStruct.ErrorCode = UserAlreadyExistsCode
		errorStruct.ErrorMessage = UserAlreadyExistsMessage
	case UserNotFoundCode:
		errorStruct.ErrorCode = UserNotFoundCode
		errorStruct.ErrorMessage = UserNotFoundMessage
	case UserRefreshTokenCookieNotFoundCode:
		errorStruct.ErrorCode = UserRefreshTokenCookieNotFoundCode
		errorStruct.ErrorMessage = UserRefreshTokenCookieNotFoundMessage
	case UserRefreshTokenExpiredCode:
		errorStruct.ErrorCode = UserRefreshTokenExpiredCode
		errorStruct.ErrorMessage = UserRefreshTokenExpiredMessage
	case UnauthorizedCode:
		errorStruct.ErrorCode = UnauthorizedCode
		errorStruct.ErrorMessage = UnauthorizedMessage
	case ForbiddenCode:
		errorStruct.ErrorCode = ForbiddenCode
		errorStruct.ErrorMessage = ForbiddenMessage
	case NotFoundCode:
		errorStruct.ErrorCode = NotFoundCode
		errorStruct.ErrorMessage = NotFoundMessage
	case InvalidOrExpiredCode:
		errorStruct.ErrorCode = InvalidOrExpiredCode
		errorStruct.ErrorMessage = InvalidOrExpiredMessage
	case PartialFailureCode:
		errorStruct.ErrorCode = PartialFailureCode
		errorStruct.ErrorMessage = PartialFailureMessage
	case DependencyFailureCode:
		errorStruct.ErrorCode = DependencyFailureCode
		errorStruct.ErrorMessage = DependencyFailureMessage
	case InvalidRequestCode:
		errorStruct.ErrorCode = InvalidRequestCode
		errorStruct.ErrorMessage = InvalidRequestMessage
	case ValidationErrorCode:
		errorStruct.ErrorCode = ValidationErrorCode
		errorStruct.ErrorMessage = ValidationErrorMessage
	}

	return errorStruct
}

type kindMapping struct {
	status int
	code   ErrorCode
	// public messages of these kinds are written for end users
	echoMessage bool
}

var kindMappings = map[domain.ErrorKind]kindMapping{
	domain.KindValidation:        {http.StatusBadRequest, ValidationErrorCode, true},
	domain.KindNotFound:          {http.StatusNotFound, NotFoundCode, true},
	domain.KindInvalidOrExpired:  {http.StatusBadRequest, InvalidOrExpiredCode, true},
	domain.KindConflict:          {http.StatusConflict, UserAlreadyExistsCode, true},
	domain.KindForbidden:         {http.StatusForbidden, ForbiddenCode, true},
	domain.KindUnauthorized:      {http.StatusUnauthorized, UnauthorizedCode, false},
	domain.KindPartialFailure:    {http.StatusMultiStatus, PartialFailureCode, true},
	domain.KindDependencyFailure: {http.StatusServiceUnavailable, DependencyFailureCode, false},
}
