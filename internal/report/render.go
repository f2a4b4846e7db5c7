package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ContractorLine struct {
	Name    string
	TaxID   string
	Active  bool
	Centros int
}

type VehiculoLine struct {
	Contractor      string
	Subcentro       string
	EquipmentTypeID string
	TankCapacityGal float64
	ConsumptionL100 float64
	Active          bool
}

type BranchReportData struct {
	BranchName   string
	Department   string
	Municipality string
	ContactEmail string
	ContactPhone string
	Active       bool
	GeneratedAt  string
	Contractors  []ContractorLine
	Vehiculos    []VehiculoLine
}

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 9}
	cellText   = props.Text{Size: 9}
	rightText  = props.Text{Size: 9, Align: align.Right}
)

// Render lays out the branch report and returns the PDF bytes.
func Render(data BranchReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, data.BranchName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, statusLabel(data.Active, "Activa", "Inactiva"), props.Text{
			Size:  11,
			Align: align.Right,
			Top:   3,
		}),
	)
	m.AddRow(18,
		col.New(6).Add(
			text.New(data.Department+" / "+data.Municipality, props.Text{Top: 0}),
			text.New(data.ContactEmail, props.Text{Top: 5}),
			text.New(data.ContactPhone, props.Text{Top: 10}),
		),
		text.NewCol(6, "Generado: "+data.GeneratedAt, props.Text{Size: 8, Align: align.Right}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(12, text.NewCol(12, fmt.Sprintf("Contratistas (%d)", len(data.Contractors)), props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Top:   3,
	}))
	m.AddRow(8,
		text.NewCol(5, "Nombre", headerText),
		text.NewCol(3, "NIT", headerText),
		text.NewCol(2, "Estado", headerText),
		text.NewCol(2, "Centros", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, c := range data.Contractors {
		m.AddRow(7,
			text.NewCol(5, c.Name, cellText),
			text.NewCol(3, c.TaxID, cellText),
			text.NewCol(2, statusLabel(c.Active, "Activo", "Inactivo"), cellText),
			text.NewCol(2, fmt.Sprintf("%d", c.Centros), rightText),
		)
	}

	m.AddRow(12, text.NewCol(12, fmt.Sprintf("Vehículos (%d)", len(data.Vehiculos)), props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Top:   3,
	}))
	m.AddRow(8,
		text.NewCol(3, "Contratista", headerText),
		text.NewCol(3, "Subcentro", headerText),
		text.NewCol(2, "Tipo", headerText),
		text.NewCol(2, "Tanque (gal)", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "L/100km", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, v := range data.Vehiculos {
		m.AddRow(7,
			text.NewCol(3, v.Contractor, cellText),
			text.NewCol(3, v.Subcentro, cellText),
			text.NewCol(2, v.EquipmentTypeID, cellText),
			text.NewCol(2, fmt.Sprintf("%.1f", v.TankCapacityGal), rightText),
			text.NewCol(2, fmt.Sprintf("%.1f", v.ConsumptionL100), rightText),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func statusLabel(active bool, yes, no string) string {
	if active {
		return yes
	}
	return no
}
