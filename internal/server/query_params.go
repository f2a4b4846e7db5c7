package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type toggleRequest struct {
	Active *bool `json:"activo"`
}

// bindToggle reads the target state of a toggle call, either from the JSON
// body or from ?activo=.
func bindToggle(c *gin.Context) (bool, error) {
	if v, err := parseOptionalBool(c.Query("activo")); err != nil {
		return false, newValidationError("activo", "invalid_active", "invalid activo")
	} else if v != nil {
		return *v, nil
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		return false, newValidationError("activo", "required", "activo is required")
	}
	return *req.Active, nil
}

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
