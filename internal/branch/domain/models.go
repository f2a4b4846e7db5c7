package domain

type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"telefono,omitempty"`
	Address string `json:"direccion,omitempty"`
}

// Branch is the branches/{id} document. Branches exist once; they are never
// copied.
type Branch struct {
	ID               string  `json:"id"`
	Name             string  `json:"nombre"`
	Department       string  `json:"departamento"`
	DepartmentSlug   string  `json:"departamento_slug"`
	Municipality     string  `json:"municipio"`
	MunicipalitySlug string  `json:"municipio_slug"`
	Active           bool    `json:"activa"`
	Contact          Contact `json:"contacto"`
	DaneDepartment   string  `json:"dane_departamento,omitempty"`
	DaneMunicipality string  `json:"dane_municipio,omitempty"`

	CreatedAt int64  `json:"creado_en,omitempty"`
	CreatedBy string `json:"creado_por,omitempty"`
	UpdatedAt int64  `json:"actualizado_en,omitempty"`
	UpdatedBy string `json:"actualizado_por,omitempty"`
}

type KPIs struct {
	Total  int `json:"total"`
	Active int `json:"activas"`
}
