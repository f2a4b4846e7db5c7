package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"go.uber.org/zap"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BranchID  string `json:"branchId"`
}

func (s *Server) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.identity.SignIn(c.Request.Context(), identitydomain.SignInRequest{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		ClientKey: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SignUp registers an account and writes its minimal profile. New users start
// as viewers; roles are granted by an administrator.
func (s *Server) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	displayName := strings.TrimSpace(first + " " + last)

	result, err := s.identity.SignUp(c.Request.Context(), identitydomain.SignUpRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: displayName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.profiles.Create(c.Request.Context(), profiledomain.Profile{
		UID:         result.Account.UID,
		Role:        profiledomain.RoleViewer,
		Status:      profiledomain.StatusActive,
		BranchID:    strings.TrimSpace(req.BranchID),
		Email:       result.Account.Email,
		DisplayName: displayName,
		FirstName:   first,
		LastName:    last,
	}); err != nil {
		s.log.Error("profile creation after sign-up failed", zap.String("uid", result.Account.UID), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) Me(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"uid":             sess.UID(),
		"email":           sess.Email(),
		"role":            sess.Role(),
		"is_global_admin": sess.IsGlobalAdmin(),
		"is_contractor":   sess.IsContractor(),
		"profile":         sess.Profile(),
	}})
}
