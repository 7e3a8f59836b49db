// Command genmock writes a deterministic mock emissions workbook in the
// layout of the published dataset, so the pipeline can run offline against a
// local file.
//
// Usage:
//
//	go run ./cmd/genmock -out data/state_emissions.xlsx
//
// The sheet has one blank and one repeated header cell, a row per state and
// for the District of Columbia, a national total row, and a source footnote.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

var headers = []any{"State", "Abbreviation", "", "Total Emissions", "Population", "Per Capita Emissions", "Population"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/state_emissions.xlsx", "output path for the mock workbook")
	sheet := flag.String("sheet", "Output - State", "name of the emissions sheet")
	flag.Parse()

	f, err := buildWorkbook(*sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(*out); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}
	log.Printf("wrote %s: %d states, sheet %q", *out, len(domain.States()), *sheet)
	return nil
}

func buildWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	rows := [][]any{headers}
	var totalEmissions float64
	var totalPop int
	for _, st := range domain.States() {
		pop, perCapita := mockFigures(st)
		emissions := round(perCapita*float64(pop)/1e6, 2)
		totalEmissions += emissions
		totalPop += pop

		name := st.Name
		if st.Abbrev == "DC" {
			name += "*"
		}
		rows = append(rows, []any{name, st.Abbrev, "", emissions, pop, perCapita, pop})
	}
	rows = append(rows,
		[]any{"United States", "US", "", round(totalEmissions, 2), totalPop, round(totalEmissions*1e6/float64(totalPop), 1), totalPop},
		[]any{},
		[]any{"* Washington, D.C. is reported with the states."},
		[]any{"Source: generated by genmock; figures are synthetic."},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet("Notes"); err != nil {
		return nil, fmt.Errorf("create notes sheet: %w", err)
	}
	if err := f.SetCellValue("Notes", "A1", "Emissions in million metric tons CO2e; per capita in metric tons CO2e per person."); err != nil {
		return nil, err
	}
	return f, nil
}

// mockFigures derives a stable population and per-capita value from the
// FIPS code.
func mockFigures(st domain.State) (population int, perCapita float64) {
	code, _ := strconv.Atoi(st.FIPS)
	population = 550_000 + (code*7919)%9_000_000
	perCapita = round(4+float64((code*37)%600)/10, 1)
	return population, perCapita
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
