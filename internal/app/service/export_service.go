package service

import (
	"fmt"
	"strings"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ExportService produces XLSX workbooks for the reporting dashboards.
// Exports read persisted rows only; they never trigger detection or merges.
type ExportService interface {
	ExportSMEs(filter repository.MSMEFilter) (*excelize.File, error)
	ExportDuplicates(status string) (*excelize.File, error)
}

type exportService struct {
	smes       repository.MSMERepository
	duplicates repository.DuplicateRepository
}

func NewExportService(smes repository.MSMERepository, duplicates repository.DuplicateRepository) ExportService {
	return &exportService{smes: smes, duplicates: duplicates}
}

var smeExportHeaders = []string{
	"Registration Number", "Business Name", "Trading Name", "Status",
	"Sector", "Business Size", "Employees", "Annual Revenue (PGK)",
	"Primary Phone", "Email", "Province", "District", "Village",
	"Women Led", "Youth Led", "Registered",
}

func (s *exportService) ExportSMEs(filter repository.MSMEFilter) (*excelize.File, error) {
	logger.Info("Exporting MSME registry", map[string]interface{}{
		"province_id": filter.ProvinceID,
		"status":      filter.Status,
	})

	// export everything matching the filter, not one page of it
	filter.Page = 0
	filter.PageSize = 0
	smes, _, err := s.smes.FindAll(filter)
	if err != nil {
		return nil, apperrors.NewPersistenceError("export", err)
	}

	f := excelize.NewFile()
	sheet := "MSMEs"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range smeExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, sme := range smes {
		values := []interface{}{
			sme.RegistrationNumber,
			sme.BusinessName,
			sme.TradingName,
			sme.Status,
			sme.Sector,
			sme.BusinessSize,
			sme.EmployeeCount,
			sme.AnnualRevenue,
			sme.PrimaryPhone,
			sme.Email,
			sme.ProvinceID,
			sme.DistrictID,
			sme.Village,
			sme.WomenLed,
			sme.YouthLed,
			sme.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	logger.Info("MSME registry exported", map[string]interface{}{
		"rows": len(smes),
	})
	return f, nil
}

var duplicateExportHeaders = []string{
	"Candidate ID", "SME ID 1", "SME ID 2", "Score", "Band",
	"Match Reasons", "Status", "Reviewed By", "Reviewed At",
	"Master SME ID", "Notes",
}

func (s *exportService) ExportDuplicates(status string) (*excelize.File, error) {
	logger.Info("Exporting duplicate candidates", map[string]interface{}{
		"status": status,
	})

	candidates, err := s.duplicates.FindAll(repository.CandidateFilter{Status: status})
	if err != nil {
		return nil, apperrors.NewPersistenceError("export", err)
	}

	f := excelize.NewFile()
	sheet := "Duplicates"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range duplicateExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, c := range candidates {
		reviewedBy := ""
		if c.ReviewedBy != nil {
			reviewedBy = fmt.Sprintf("%d", *c.ReviewedBy)
		}
		reviewedAt := ""
		if c.ReviewedAt != nil {
			reviewedAt = c.ReviewedAt.Format("2006-01-02 15:04")
		}
		master := ""
		if c.MergedIntoSMEID != nil {
			master = fmt.Sprintf("%d", *c.MergedIntoSMEID)
		}

		values := []interface{}{
			c.ID,
			c.SMEID1,
			c.SMEID2,
			c.SimilarityScore,
			model.ConfidenceBand(c.SimilarityScore),
			strings.Join(c.MatchReasons, ", "),
			c.Status,
			reviewedBy,
			reviewedAt,
			master,
			c.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	logger.Info("Duplicate candidates exported", map[string]interface{}{
		"rows": len(candidates),
	})
	return f, nil
}
