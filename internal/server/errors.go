package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/smallbiznis/branchops/internal/authorization"
	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"github.com/smallbiznis/branchops/internal/ratelimit"
	"github.com/smallbiznis/branchops/internal/slug"
	worksitedomain "github.com/smallbiznis/branchops/internal/worksite/domain"

	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog feeds the request logger the same type and code the
// client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if idCode := identitydomain.Code(err); idCode != "" {
		code = idCode
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if identitydomain.Code(err) != "" {
		return mapIdentityError(err)
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidRole),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, contractordomain.ErrAlreadyExists),
		errors.Is(err, ratelimit.ErrLocked),
		errors.Is(err, slug.ErrIDSpaceExhausted):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// mapIdentityError keeps the provider code and its localized message.
func mapIdentityError(err error) (int, errorPayload) {
	status := http.StatusBadRequest
	errType := "validation_error"
	switch {
	case errors.Is(err, identitydomain.ErrInvalidCredential),
		errors.Is(err, identitydomain.ErrUserNotFound),
		errors.Is(err, identitydomain.ErrInvalidToken):
		status, errType = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, identitydomain.ErrEmailAlreadyInUse):
		status, errType = http.StatusConflict, "conflict"
	case errors.Is(err, identitydomain.ErrTooManyRequests):
		status, errType = http.StatusTooManyRequests, "too_many_requests"
	}
	return status, errorPayload{
		Type:    errType,
		Message: identitydomain.Message(err),
		Errors: []ValidationError{
			{
				Field:   "auth",
				Code:    identitydomain.Code(err),
				Message: identitydomain.Message(err),
			},
		},
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, slug.ErrEmptyName):
		return true
	case isBranchValidationError(err),
		isContractorValidationError(err),
		isWorksiteValidationError(err),
		isProfileValidationError(err):
		return true
	default:
		return false
	}
}

func isBranchValidationError(err error) bool {
	switch {
	case errors.Is(err, branchdomain.ErrInvalidID),
		errors.Is(err, branchdomain.ErrInvalidName),
		errors.Is(err, branchdomain.ErrInvalidDepartment),
		errors.Is(err, branchdomain.ErrInvalidMunicipality):
		return true
	default:
		return false
	}
}

func isContractorValidationError(err error) bool {
	switch {
	case errors.Is(err, contractordomain.ErrInvalidID),
		errors.Is(err, contractordomain.ErrInvalidName),
		errors.Is(err, contractordomain.ErrInvalidEmail),
		errors.Is(err, contractordomain.ErrInvalidBranch),
		errors.Is(err, contractordomain.ErrInvalidBranches):
		return true
	default:
		return false
	}
}

func isWorksiteValidationError(err error) bool {
	switch {
	case errors.Is(err, worksitedomain.ErrInvalidScope),
		errors.Is(err, worksitedomain.ErrInvalidID),
		errors.Is(err, worksitedomain.ErrInvalidName),
		errors.Is(err, worksitedomain.ErrInvalidEquipmentType),
		errors.Is(err, worksitedomain.ErrInvalidCapacity),
		errors.Is(err, worksitedomain.ErrInvalidConsumption):
		return true
	default:
		return false
	}
}

func isProfileValidationError(err error) bool {
	return errors.Is(err, profiledomain.ErrInvalidUID) || errors.Is(err, profiledomain.ErrInvalidField)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, branchdomain.ErrNotFound),
		errors.Is(err, contractordomain.ErrNotFound),
		errors.Is(err, contractordomain.ErrBranchNotFound),
		errors.Is(err, worksitedomain.ErrNotFound),
		errors.Is(err, worksitedomain.ErrParentNotFound),
		errors.Is(err, profiledomain.ErrNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return rootCode(err)
	}
}

// rootCode strips wrapping context so the code is the sentinel text.
func rootCode(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
