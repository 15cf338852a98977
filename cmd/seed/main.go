package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports the workshop catalog from an XLSX sheet. Expected columns:
// Nome | Descrição | Preço (R$) | Peso (kg) | Comprimento (cm) | Altura (cm) |
// Largura (cm) | Madeira | Prazo (dias) | Personalizável | Imagem
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

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			fmt.Printf("Failed to import %q: %v\n", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	slugCounter := make(map[string]int)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 3 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(cell(row, 1))
		priceCents, err := parsePriceBRL(cell(row, 2))
		if name == "" || err != nil || priceCents <= 0 {
			skippedCount++
			continue
		}

		slug := service.Slugify(name)
		slugCounter[slug]++
		if n := slugCounter[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}

		leadTime := parseIntCell(cell(row, 8), 15)
		if leadTime <= 0 {
			leadTime = 15
		}

		products = append(products, model.Product{
			Name:           name,
			Slug:           slug,
			Description:    description,
			PriceCents:     priceCents,
			WeightKg:       parseFloatCell(cell(row, 3)),
			LengthCm:       parseFloatCell(cell(row, 4)),
			HeightCm:       parseFloatCell(cell(row, 5)),
			WidthCm:        parseFloatCell(cell(row, 6)),
			Wood:           model.WoodType(strings.ToLower(strings.TrimSpace(cell(row, 7)))),
			LeadTimeDays:   leadTime,
			Personalizable: parseBoolCell(cell(row, 9)),
			ImageURL:       strings.TrimSpace(cell(row, 10)),
			IsActive:       true,
		})
	}

	fmt.Printf("Skipped rows: %d\n", skippedCount)
	return products, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parsePriceBRL accepts "1.289,90", "189,90" or "189.90" and returns cents.
func parsePriceBRL(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return int64(math.Round(value * 100)), nil
}

func parseFloatCell(raw string) float64 {
	s := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseIntCell(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseBoolCell(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sim", "yes", "true", "1", "s", "y":
		return true
	}
	return false
}
