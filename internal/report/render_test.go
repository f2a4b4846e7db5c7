package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	out, err := Render(BranchReportData{
		BranchName:   "Sede Bogotá",
		Department:   "Cundinamarca",
		Municipality: "Bogotá",
		Active:       true,
		GeneratedAt:  "2024-03-01 12:00 UTC",
		Contractors: []ContractorLine{
			{Name: "Acme", TaxID: "900123", Active: true, Centros: 2},
		},
		Vehiculos: []VehiculoLine{
			{Contractor: "Acme", Subcentro: "Patio", EquipmentTypeID: "volqueta", TankCapacityGal: 60, ConsumptionL100: 32.5},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
