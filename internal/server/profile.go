package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"go.uber.org/zap"
)

func (s *Server) GetMyProfile(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	profile := sess.Profile()
	if profile == nil {
		AbortWithError(c, profiledomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// UpdateMyProfile merges the editable profile fields. Empty values are
// dropped by the repository, so they never erase stored data.
func (s *Server) UpdateMyProfile(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	for key, value := range req {
		if _, ok := profiledomain.EditableFields[key]; !ok {
			AbortWithError(c, newValidationError(key, "invalid_field", "field cannot be changed"))
			return
		}
		if _, ok := value.(string); !ok && value != nil {
			AbortWithError(c, newValidationError(key, "invalid_value", "value must be text"))
			return
		}
	}

	if err := s.profiles.Update(c.Request.Context(), sess.UID(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := sess.Refresh(c.Request.Context()); err != nil {
		// The write landed; serve the merged view instead of failing.
		s.log.Warn("profile refresh failed after update", zap.String("uid", sess.UID()), zap.Error(err))
		sess.ApplyLocalPatch(func(p *profiledomain.Profile) {
			for key, value := range req {
				if text, _ := value.(string); strings.TrimSpace(text) != "" {
					p.SetEditable(key, strings.TrimSpace(text))
				}
			}
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": sess.Profile()})
}

// ListMyBranches returns the branches the signed-in user works in: all of
// them for administrators, the contractor's branches for contractor users and
// the assigned branch otherwise.
func (s *Server) ListMyBranches(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	ctx := c.Request.Context()

	var (
		branches []branchdomain.Branch
		err      error
	)
	profile := sess.Profile()
	switch {
	case isUnscoped(sess):
		branches, err = s.branches.List(ctx)
	case profile != nil && profile.Role.IsContractor():
		branches, err = s.contractors.BranchesForContractor(ctx, profile.ContractorID, sess.Email())
	case profile != nil && profile.BranchID != "":
		var b *branchdomain.Branch
		b, err = s.branches.Get(ctx, profile.BranchID)
		if errors.Is(err, branchdomain.ErrNotFound) {
			err = nil
		}
		if b != nil {
			branches = []branchdomain.Branch{*b}
		}
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if branches == nil {
		branches = []branchdomain.Branch{}
	}

	c.JSON(http.StatusOK, gin.H{"data": branches})
}
