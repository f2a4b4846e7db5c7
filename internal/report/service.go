// Package report renders branch summaries as PDF documents.
package report

import (
	"context"

	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/clock"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	worksitedomain "github.com/smallbiznis/branchops/internal/worksite/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("report.service",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Branches    branchdomain.Service
	Contractors contractordomain.Service
	Worksites   worksitedomain.Service
	Clock       clock.Clock
}

type Service struct {
	log         *zap.Logger
	branches    branchdomain.Service
	contractors contractordomain.Service
	worksites   worksitedomain.Service
	clock       clock.Clock
}

func New(p Params) *Service {
	return &Service{
		log:         p.Log.Named("report.service"),
		branches:    p.Branches,
		contractors: p.Contractors,
		worksites:   p.Worksites,
		clock:       p.Clock,
	}
}

// BranchReport collects the branch, its contractors and its vehicles and
// renders them.
func (s *Service) BranchReport(ctx context.Context, branchID string) ([]byte, error) {
	data, err := s.collect(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out, err := Render(data)
	if err != nil {
		s.log.Error("render branch report failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) collect(ctx context.Context, branchID string) (BranchReportData, error) {
	b, err := s.branches.Get(ctx, branchID)
	if err != nil {
		return BranchReportData{}, err
	}
	data := BranchReportData{
		BranchName:   b.Name,
		Department:   b.Department,
		Municipality: b.Municipality,
		ContactEmail: b.Contact.Email,
		ContactPhone: b.Contact.Phone,
		Active:       b.Active,
		GeneratedAt:  s.clock.Now().Format("2006-01-02 15:04 MST"),
	}

	contractors, err := s.contractors.ListByBranch(ctx, b.ID)
	if err != nil {
		return BranchReportData{}, err
	}
	for _, c := range contractors {
		centros, err := s.worksites.ListCentros(ctx, worksitedomain.Scope{BranchID: b.ID, ContractorID: c.ID})
		if err != nil {
			return BranchReportData{}, err
		}
		data.Contractors = append(data.Contractors, ContractorLine{
			Name:    c.Name,
			TaxID:   c.TaxID,
			Active:  c.Active,
			Centros: len(centros),
		})
	}

	vehiculos, err := s.worksites.ListVehiculosByBranch(ctx, b.ID)
	if err != nil {
		return BranchReportData{}, err
	}
	for _, v := range vehiculos {
		data.Vehiculos = append(data.Vehiculos, VehiculoLine{
			Contractor:      v.ContractorName,
			Subcentro:       v.SubcentroName,
			EquipmentTypeID: v.EquipmentTypeID,
			TankCapacityGal: v.TankCapacityGal,
			ConsumptionL100: v.ConsumptionL100km,
			Active:          v.Active,
		})
	}
	return data, nil
}
