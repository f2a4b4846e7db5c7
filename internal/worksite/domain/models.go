package domain

// Scope addresses a collection under a contractor copy. Centros need the
// branch and contractor, subcentros add the centro, vehiculos add the
// subcentro.
type Scope struct {
	BranchID     string
	ContractorID string
	CentroID     string
	SubcentroID  string
}

type Audit struct {
	CreatedAt int64  `json:"creado_en,omitempty"`
	CreatedBy string `json:"creado_por,omitempty"`
	UpdatedAt int64  `json:"actualizado_en,omitempty"`
	UpdatedBy string `json:"actualizado_por,omitempty"`
}

type Centro struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Code        string `json:"codigo,omitempty"`
	Description string `json:"descripcion,omitempty"`
	Active      bool   `json:"activo"`
	Audit
}

func (c *Centro) SetID(id string) { c.ID = id }

type Subcentro struct {
	ID     string `json:"id"`
	Name   string `json:"nombre"`
	Code   string `json:"codigo,omitempty"`
	Active bool   `json:"activo"`
	Audit
}

func (s *Subcentro) SetID(id string) { s.ID = id }

type Vehiculo struct {
	ID                string  `json:"id"`
	BranchID          string  `json:"sucursal_id"`
	ContractorID      string  `json:"contratista_id"`
	CentroID          string  `json:"centro_id"`
	SubcentroID       string  `json:"subcentro_id"`
	EquipmentTypeID   string  `json:"tipo_equipo_id"`
	TankCapacityGal   float64 `json:"capacidad_tanque_gal"`
	ConsumptionL100km float64 `json:"consumo_l100km"`
	Active            bool    `json:"activo"`
	Audit
}

func (v *Vehiculo) SetID(id string) { v.ID = id }

// VehiculoRow is a vehicle in the branch-wide listing.
type VehiculoRow struct {
	Vehiculo
	ContractorName string `json:"contractorNombre,omitempty"`
	SubcentroName  string `json:"subcentroNombre,omitempty"`
}
