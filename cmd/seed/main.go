package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pngsmec/msme-registry-backend/config"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/db"
	"github.com/pngsmec/msme-registry-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Imports MSME survey workbooks collected in the field. Rows missing a
// business name or province are skipped; exact repeats within the file are
// dropped but near-duplicates are kept for the detection scan to find.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	smeRepo := repository.NewMSMERepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	smes, skipped, err := readSurveyRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Rows to import: %d (skipped: %d)\n", len(smes), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// registration numbers continue from the current registry sequence
	seq, err := smeRepo.NextSequence()
	if err != nil {
		log.Fatal("Failed to read registry sequence:", err)
	}
	year := time.Now().Year()
	for i := range smes {
		smes[i].RegistrationNumber = util.FormatRegistrationNumber(year, seq)
		seq++
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := smeRepo.BulkCreate(smes, batchSize); err != nil {
		log.Fatal("Failed to bulk create records:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total records imported: %d\n", len(smes))
}

// Survey workbook column layout. The header row is skipped.
const (
	colBusinessName = iota
	colTradingName
	colOwnershipType
	colSector
	colSubSector
	colBusinessSize
	colEmployeeCount
	colAnnualRevenue
	colPrimaryPhone
	colSecondaryPhone
	colEmail
	colProvinceID
	colDistrictID
	colLLG
	colWard
	colVillage
	colWomenLed
	colYouthLed
	surveyColumnCount
)

func readSurveyRows(filePath string) ([]model.MSME, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var smes []model.MSME
	seen := make(map[string]bool) // exact repeats within one workbook
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		// pad short rows so column access is safe
		for len(row) < surveyColumnCount {
			row = append(row, "")
		}

		businessName := strings.TrimSpace(row[colBusinessName])
		provinceID := strings.TrimSpace(row[colProvinceID])
		if businessName == "" || provinceID == "" {
			skipped++
			continue
		}

		primaryPhone := strings.TrimSpace(row[colPrimaryPhone])
		key := strings.ToLower(businessName) + "|" + primaryPhone + "|" + provinceID
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		smes = append(smes, model.MSME{
			BusinessName:   businessName,
			TradingName:    strings.TrimSpace(row[colTradingName]),
			OwnershipType:  strings.TrimSpace(row[colOwnershipType]),
			Sector:         strings.TrimSpace(row[colSector]),
			SubSector:      strings.TrimSpace(row[colSubSector]),
			BusinessSize:   strings.TrimSpace(row[colBusinessSize]),
			EmployeeCount:  parseIntCell(row[colEmployeeCount]),
			AnnualRevenue:  parseFloatCell(row[colAnnualRevenue]),
			PrimaryPhone:   primaryPhone,
			SecondaryPhone: strings.TrimSpace(row[colSecondaryPhone]),
			Email:          strings.TrimSpace(row[colEmail]),
			ProvinceID:     provinceID,
			DistrictID:     strings.TrimSpace(row[colDistrictID]),
			LLG:            strings.TrimSpace(row[colLLG]),
			Ward:           strings.TrimSpace(row[colWard]),
			Village:        strings.TrimSpace(row[colVillage]),
			WomenLed:       parseBoolCell(row[colWomenLed]),
			YouthLed:       parseBoolCell(row[colYouthLed]),
			Status:         model.StatusSubmitted,
		})
	}

	return smes, skipped, nil
}

func parseIntCell(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatCell(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
