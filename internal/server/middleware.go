package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/branchops/internal/authorization"
	obscontext "github.com/smallbiznis/branchops/internal/observability/context"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"github.com/smallbiznis/branchops/internal/profile/session"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "bearer "
	contextSessionKey   = "session"
)

// AuthRequired resolves the bearer ID token to an account and loads its
// profile into a request-scoped session.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		account, err := s.identity.CurrentUser(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		sess, err := session.Load(c.Request.Context(), account.UID, account.Email, s.profiles)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := session.WithSession(c.Request.Context(), sess)
		ctx = obscontext.WithActor(ctx, sess.UID(), sess.Role())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextSessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader(headerAuthorization))
	if len(raw) <= len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(raw[len(bearerPrefix):])
	return token, token != ""
}

func sessionFrom(c *gin.Context) (*session.Session, bool) {
	if v, ok := c.Get(contextSessionKey); ok {
		if sess, ok := v.(*session.Session); ok && sess != nil {
			return sess, true
		}
	}
	return session.FromContext(c.Request.Context())
}

func actorID(c *gin.Context) string {
	sess, ok := sessionFrom(c)
	if !ok {
		return ""
	}
	return sess.UID()
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), sess.UID(), sess.Role(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// isUnscoped reports whether the session may reach every branch.
func isUnscoped(sess *session.Session) bool {
	switch sess.Role() {
	case authorization.RoleGlobalAdmin, string(profiledomain.RoleAdmin):
		return true
	}
	return false
}

func (s *Server) requireUnscoped() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !isUnscoped(sess) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// branchScope keeps branch-level users inside their own branch and
// contractor users inside the branches their contractor belongs to.
func (s *Server) branchScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.checkBranchScope(c, sess, strings.TrimSpace(c.Param("branchId"))); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) checkBranchScope(c *gin.Context, sess *session.Session, branchID string) error {
	if isUnscoped(sess) {
		return nil
	}
	profile := sess.Profile()
	if profile == nil {
		return ErrForbidden
	}
	if profile.Role.IsContractor() {
		if profile.ContractorID == "" {
			return ErrForbidden
		}
		ids, err := s.contractors.BranchIDs(c.Request.Context(), profile.ContractorID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == branchID {
				return nil
			}
		}
		return ErrForbidden
	}
	if profile.BranchID == "" || profile.BranchID != branchID {
		return ErrForbidden
	}
	return nil
}

// contractorScope limits contractor users to their own contractor id.
func (s *Server) contractorScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if sess.IsContractor() {
			profile := sess.Profile()
			if profile.ContractorID == "" || profile.ContractorID != strings.TrimSpace(c.Param("contractorId")) {
				AbortWithError(c, ErrForbidden)
				return
			}
		}
		c.Next()
	}
}

// ownContractorOrUnscoped admits unscoped sessions and contractor users acting
// on their own contractor. Branch-level users cannot reach cross-branch routes.
func (s *Server) ownContractorOrUnscoped() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if isUnscoped(sess) {
			c.Next()
			return
		}
		profile := sess.Profile()
		if profile == nil || !profile.Role.IsContractor() || profile.ContractorID == "" ||
			profile.ContractorID != strings.TrimSpace(c.Param("contractorId")) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
