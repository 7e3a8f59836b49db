package xlsx

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-emissions-map/internal/domain"
)

// ErrSheetNotFound is returned when the workbook has no sheet with the
// requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Loader reads worksheets into domain tables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load opens the workbook at path and parses the sheet whose name matches
// exactly. The first row supplies headers; blank and repeated headers are
// renamed by [RepairHeaders]. Cells are read as raw values so numbers keep
// full precision instead of their display format.
func (l *Loader) Load(path, sheet string) (domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	// excelize matches sheet names case-insensitively.
	if sheets := f.GetSheetList(); !slices.Contains(sheets, sheet) {
		return domain.Table{}, fmt.Errorf("%w: %q in %s (have %s)",
			ErrSheetNotFound, sheet, path, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	t := domain.Table{Sheet: sheet}
	if len(rows) == 0 {
		return t, nil
	}
	t.Headers = RepairHeaders(rows[0])
	t.Rows, t.Lines = dropBlankRows(rows[1:], 2)

	l.logger.Debug("sheet loaded",
		"path", path,
		"sheet", sheet,
		"columns", len(t.Headers),
		"rows", len(t.Rows),
	)
	return t, nil
}

// RepairHeaders makes column names unique. A blank header at 1-based column
// i becomes "...i". A repeated header keeps its name on first use; later
// copies become "name...i". A repaired name that is still taken gets the
// suffix again until it is free.
func RepairHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		col := strconv.Itoa(i + 1)
		if h == "" {
			h = "..." + col
		}
		for seen[strings.ToLower(h)] {
			h += "..." + col
		}
		seen[strings.ToLower(h)] = true
		out[i] = h
	}
	return out
}

// dropBlankRows removes rows with no visible content and returns the sheet
// line of each kept row, counting from first.
func dropBlankRows(rows [][]string, first int) ([][]string, []int) {
	out := make([][]string, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for i, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				lines = append(lines, first+i)
				break
			}
		}
	}
	return out, lines
}
