package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/pkg/db/pagination"
)

type branchContactRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
}

func (r branchContactRequest) domain() branchdomain.Contact {
	return branchdomain.Contact{
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
	}
}

type createBranchRequest struct {
	Name             string               `json:"nombre"`
	Department       string               `json:"departamento"`
	Municipality     string               `json:"municipio"`
	Active           *bool                `json:"activa"`
	Contact          branchContactRequest `json:"contacto"`
	DaneDepartment   string               `json:"dane_departamento"`
	DaneMunicipality string               `json:"dane_municipio"`
}

type updateBranchRequest struct {
	Name             *string               `json:"nombre"`
	Department       *string               `json:"departamento"`
	Municipality     *string               `json:"municipio"`
	Contact          *branchContactRequest `json:"contacto"`
	DaneDepartment   *string               `json:"dane_departamento"`
	DaneMunicipality *string               `json:"dane_municipio"`
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branches.Create(c.Request.Context(), branchdomain.CreateBranchRequest{
		Name:             strings.TrimSpace(req.Name),
		Department:       strings.TrimSpace(req.Department),
		Municipality:     strings.TrimSpace(req.Municipality),
		Active:           req.Active,
		Contact:          req.Contact.domain(),
		DaneDepartment:   strings.TrimSpace(req.DaneDepartment),
		DaneMunicipality: strings.TrimSpace(req.DaneMunicipality),
		Actor:            actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// ListBranches returns every branch sorted by name, or one key-ordered page
// when start_key or page_size is given.
func (s *Server) ListBranches(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if c.Query("start_key") != "" || c.Query("page_size") != "" {
		items, page, err := s.branches.Page(c.Request.Context(), query)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items, "page_info": page})
		return
	}

	items, err := s.branches.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetBranchKPIs(c *gin.Context) {
	resp, err := s.branches.KPIs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBranch(c *gin.Context) {
	resp, err := s.branches.Get(c.Request.Context(), c.Param("branchId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBranch(c *gin.Context) {
	var req updateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := branchdomain.UpdateBranchRequest{
		Name:             trimmed(req.Name),
		Department:       trimmed(req.Department),
		Municipality:     trimmed(req.Municipality),
		DaneDepartment:   trimmed(req.DaneDepartment),
		DaneMunicipality: trimmed(req.DaneMunicipality),
		Actor:            actorID(c),
	}
	if req.Contact != nil {
		contact := req.Contact.domain()
		update.Contact = &contact
	}

	resp, err := s.branches.Update(c.Request.Context(), c.Param("branchId"), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleBranch(c *gin.Context) {
	active, err := bindToggle(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.branches.ToggleActive(c.Request.Context(), c.Param("branchId"), active, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RenderBranchReport(c *gin.Context) {
	branchID := c.Param("branchId")
	pdf, err := s.reports.BranchReport(c.Request.Context(), branchID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sucursal-`+branchID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) ListBranchVehiculos(c *gin.Context) {
	resp, err := s.worksites.ListVehiculosByBranch(c.Request.Context(), c.Param("branchId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
