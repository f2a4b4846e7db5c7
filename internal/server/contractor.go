package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
)

type contractorContactRequest struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
	Email string `json:"email"`
}

func (r contractorContactRequest) domain() contractordomain.Contact {
	return contractordomain.Contact{
		Name:  strings.TrimSpace(r.Name),
		Phone: strings.TrimSpace(r.Phone),
		Email: strings.TrimSpace(r.Email),
	}
}

type createContractorRequest struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"nombre"`
	TaxID     string                   `json:"nit"`
	Contact   contractorContactRequest `json:"contacto"`
	Active    *bool                    `json:"activo"`
	AdminUID  string                   `json:"admin_uid"`
	Password  string                   `json:"password"`
	BranchIDs []string                 `json:"branchIds"`
}

func (r createContractorRequest) domain(actor string) contractordomain.CreateContractorRequest {
	return contractordomain.CreateContractorRequest{
		ID:        strings.TrimSpace(r.ID),
		Name:      strings.TrimSpace(r.Name),
		TaxID:     strings.TrimSpace(r.TaxID),
		Contact:   r.Contact.domain(),
		Active:    r.Active,
		AdminUID:  strings.TrimSpace(r.AdminUID),
		Password:  r.Password,
		BranchIDs: r.BranchIDs,
		Actor:     actor,
	}
}

type updateContractorRequest struct {
	Name    *string                   `json:"nombre"`
	TaxID   *string                   `json:"nit"`
	Contact *contractorContactRequest `json:"contacto"`
}

func (r updateContractorRequest) domain(actor string) contractordomain.UpdateContractorRequest {
	req := contractordomain.UpdateContractorRequest{
		Name:  trimmed(r.Name),
		TaxID: trimmed(r.TaxID),
		Actor: actor,
	}
	if r.Contact != nil {
		contact := r.Contact.domain()
		req.Contact = &contact
	}
	return req
}

type editMembershipRequest struct {
	// Existing is optional; when omitted the current membership is read.
	Existing []string `json:"existing"`
	Selected []string `json:"selected"`
}

type assignPendingRequest struct {
	BranchIDs []string `json:"branchIds"`
}

// ListBranchContractors returns a branch's contractors sorted by name, or a
// key-ordered page when start_key or page_size is given. Contractor users
// only see their own contractor.
func (s *Server) ListBranchContractors(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	ctx := c.Request.Context()
	branchID := c.Param("branchId")

	var (
		items []contractordomain.Contractor
		page  *pagination.PageInfo
		err   error
	)
	if c.Query("start_key") != "" || c.Query("page_size") != "" {
		var info pagination.PageInfo
		items, info, err = s.contractors.Page(ctx, branchID, query)
		page = &info
	} else {
		items, err = s.contractors.ListByBranch(ctx, branchID)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if sess, ok := sessionFrom(c); ok && sess.IsContractor() {
		own := sess.Profile().ContractorID
		filtered := make([]contractordomain.Contractor, 0, 1)
		for _, item := range items {
			if item.ID == own {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	resp := gin.H{"data": items}
	if page != nil {
		resp["page_info"] = page
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateBranchContractor(c *gin.Context) {
	var req createContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractors.CreateInBranch(c.Request.Context(), c.Param("branchId"), req.domain(actorID(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetContractorKPIs(c *gin.Context) {
	resp, err := s.contractors.KPIs(c.Request.Context(), c.Param("branchId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBranchContractor(c *gin.Context) {
	resp, err := s.contractors.Get(c.Request.Context(), c.Param("branchId"), c.Param("contractorId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, contractordomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBranchContractor(c *gin.Context) {
	var req updateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractors.Update(c.Request.Context(), c.Param("branchId"), c.Param("contractorId"), req.domain(actorID(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBranchContractor(c *gin.Context) {
	if err := s.contractors.Delete(c.Request.Context(), c.Param("branchId"), c.Param("contractorId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ToggleBranchContractor(c *gin.Context) {
	active, err := bindToggle(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.contractors.ToggleActive(c.Request.Context(), c.Param("branchId"), c.Param("contractorId"), active, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EditMembership reconciles a contractor's branches from one of its copies.
// Every branch the edit adds or removes must be in the caller's scope.
func (s *Server) EditMembership(c *gin.Context) {
	var req editMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Selected == nil {
		AbortWithError(c, newValidationError("selected", "required", "selected is required"))
		return
	}

	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	anchorID := c.Param("branchId")
	contractorID := c.Param("contractorId")
	existing := req.Existing
	if existing == nil {
		ids, err := s.contractors.BranchIDs(ctx, contractorID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		existing = ids
	}

	planned := contractordomain.Diff(existing, req.Selected, anchorID)
	for _, branchID := range append(planned.Add, planned.Remove...) {
		if err := s.checkBranchScope(c, sess, branchID); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	diff, err := s.contractors.EditMembership(ctx, anchorID, contractorID, existing, req.Selected, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	branchIDs, err := s.contractors.BranchIDs(ctx, contractorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"added":     diff.Add,
		"removed":   diff.Remove,
		"branchIds": branchIDs,
	}})
}

func (s *Server) ListAllContractors(c *gin.Context) {
	resp, err := s.contractors.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateContractor(c *gin.Context) {
	var req createContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractors.Create(c.Request.Context(), req.domain(actorID(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateContractorEverywhere(c *gin.Context) {
	var req updateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.contractors.UpdateEverywhere(c.Request.Context(), c.Param("contractorId"), req.domain(actorID(c))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListContractorBranches(c *gin.Context) {
	resp, err := s.contractors.BranchesForContractor(c.Request.Context(), c.Param("contractorId"), "")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingContractors(c *gin.Context) {
	resp, err := s.contractors.ListPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPendingContractor(c *gin.Context) {
	resp, err := s.contractors.GetPending(c.Request.Context(), c.Param("contractorId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePendingContractor(c *gin.Context) {
	if err := s.contractors.DeletePending(c.Request.Context(), c.Param("contractorId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignPendingContractor moves a pending contractor into branches. Branch
// level users may only assign into branches they can reach.
func (s *Server) AssignPendingContractor(c *gin.Context) {
	var req assignPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sess, ok := sessionFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	for _, branchID := range req.BranchIDs {
		if err := s.checkBranchScope(c, sess, strings.TrimSpace(branchID)); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	resp, err := s.contractors.AssignPending(c.Request.Context(), c.Param("contractorId"), req.BranchIDs, actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
