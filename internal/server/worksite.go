package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	worksitedomain "github.com/smallbiznis/branchops/internal/worksite/domain"
)

type createCentroRequest struct {
	Name        string `json:"nombre"`
	Code        string `json:"codigo"`
	Description string `json:"descripcion"`
	Active      *bool  `json:"activo"`
}

type updateCentroRequest struct {
	Name        *string `json:"nombre"`
	Code        *string `json:"codigo"`
	Description *string `json:"descripcion"`
}

type createSubcentroRequest struct {
	Name   string `json:"nombre"`
	Code   string `json:"codigo"`
	Active *bool  `json:"activo"`
}

type updateSubcentroRequest struct {
	Name *string `json:"nombre"`
	Code *string `json:"codigo"`
}

type createVehiculoRequest struct {
	EquipmentTypeID   string  `json:"tipo_equipo_id"`
	TankCapacityGal   float64 `json:"capacidad_tanque_gal"`
	ConsumptionL100km float64 `json:"consumo_l100km"`
	Active            *bool   `json:"activo"`
}

type updateVehiculoRequest struct {
	EquipmentTypeID   *string  `json:"tipo_equipo_id"`
	TankCapacityGal   *float64 `json:"capacidad_tanque_gal"`
	ConsumptionL100km *float64 `json:"consumo_l100km"`
}

func scopeFrom(c *gin.Context) worksitedomain.Scope {
	return worksitedomain.Scope{
		BranchID:     strings.TrimSpace(c.Param("branchId")),
		ContractorID: strings.TrimSpace(c.Param("contractorId")),
		CentroID:     strings.TrimSpace(c.Param("centroId")),
		SubcentroID:  strings.TrimSpace(c.Param("subId")),
	}
}

// -------- Centros --------

func (s *Server) ListCentros(c *gin.Context) {
	resp, err := s.worksites.ListCentros(c.Request.Context(), scopeFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCentro(c *gin.Context) {
	resp, err := s.worksites.GetCentro(c.Request.Context(), scopeFrom(c), c.Param("centroId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCentro(c *gin.Context) {
	var req createCentroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.CreateCentro(c.Request.Context(), scopeFrom(c), worksitedomain.CreateCentroRequest{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
		Active:      req.Active,
		Actor:       actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCentro(c *gin.Context) {
	var req updateCentroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.UpdateCentro(c.Request.Context(), scopeFrom(c), c.Param("centroId"), worksitedomain.UpdateCentroRequest{
		Name:        trimmed(req.Name),
		Code:        trimmed(req.Code),
		Description: trimmed(req.Description),
		Actor:       actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleCentro(c *gin.Context) {
	active, err := bindToggle(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.worksites.ToggleCentro(c.Request.Context(), scopeFrom(c), c.Param("centroId"), active, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteCentro(c *gin.Context) {
	if err := s.worksites.DeleteCentro(c.Request.Context(), scopeFrom(c), c.Param("centroId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Subcentros --------

func (s *Server) ListSubcentros(c *gin.Context) {
	resp, err := s.worksites.ListSubcentros(c.Request.Context(), scopeFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubcentro(c *gin.Context) {
	resp, err := s.worksites.GetSubcentro(c.Request.Context(), scopeFrom(c), c.Param("subId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSubcentro(c *gin.Context) {
	var req createSubcentroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.CreateSubcentro(c.Request.Context(), scopeFrom(c), worksitedomain.CreateSubcentroRequest{
		Name:   strings.TrimSpace(req.Name),
		Code:   strings.TrimSpace(req.Code),
		Active: req.Active,
		Actor:  actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateSubcentro(c *gin.Context) {
	var req updateSubcentroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.UpdateSubcentro(c.Request.Context(), scopeFrom(c), c.Param("subId"), worksitedomain.UpdateSubcentroRequest{
		Name:  trimmed(req.Name),
		Code:  trimmed(req.Code),
		Actor: actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleSubcentro(c *gin.Context) {
	active, err := bindToggle(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.worksites.ToggleSubcentro(c.Request.Context(), scopeFrom(c), c.Param("subId"), active, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteSubcentro(c *gin.Context) {
	if err := s.worksites.DeleteSubcentro(c.Request.Context(), scopeFrom(c), c.Param("subId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Vehiculos --------

func (s *Server) ListVehiculos(c *gin.Context) {
	resp, err := s.worksites.ListVehiculos(c.Request.Context(), scopeFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVehiculo(c *gin.Context) {
	resp, err := s.worksites.GetVehiculo(c.Request.Context(), scopeFrom(c), c.Param("vehId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateVehiculo(c *gin.Context) {
	var req createVehiculoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.CreateVehiculo(c.Request.Context(), scopeFrom(c), worksitedomain.CreateVehiculoRequest{
		EquipmentTypeID:   strings.TrimSpace(req.EquipmentTypeID),
		TankCapacityGal:   req.TankCapacityGal,
		ConsumptionL100km: req.ConsumptionL100km,
		Active:            req.Active,
		Actor:             actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateVehiculo(c *gin.Context) {
	var req updateVehiculoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.worksites.UpdateVehiculo(c.Request.Context(), scopeFrom(c), c.Param("vehId"), worksitedomain.UpdateVehiculoRequest{
		EquipmentTypeID:   trimmed(req.EquipmentTypeID),
		TankCapacityGal:   req.TankCapacityGal,
		ConsumptionL100km: req.ConsumptionL100km,
		Actor:             actorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleVehiculo(c *gin.Context) {
	active, err := bindToggle(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.worksites.ToggleVehiculo(c.Request.Context(), scopeFrom(c), c.Param("vehId"), active, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteVehiculo(c *gin.Context) {
	if err := s.worksites.DeleteVehiculo(c.Request.Context(), scopeFrom(c), c.Param("vehId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
