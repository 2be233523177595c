package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/filex"
)

// MaxFileSize is the largest spreadsheet accepted for import.
const MaxFileSize = 10 << 20

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoData            = errors.New("no data found in spreadsheet")
	ErrUnknownEncoding   = errors.New("unknown text encoding")
)

// Options tune CSV reading. XLSX files ignore them.
type Options struct {
	// Encoding names the CSV charset, e.g. "windows-1251". Empty means UTF-8.
	Encoding string
	// Delimiter forces the CSV field separator. Zero detects ';' or ','.
	Delimiter rune
}

// Result holds the parsed candidates and how the columns were understood.
type Result struct {
	Supplies []models.Supply
	Header   []string
	Mapping  Mapping
	Warnings []string
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFile reads the spreadsheet at path.
func ParseFile(path string, opts Options) (*Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if err := filex.CheckSize(path, MaxFileSize); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, format, opts)
}

// Parse reads a spreadsheet of the given format from r.
func Parse(r io.Reader, format Format, opts Options) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r, opts)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (*Result, error) {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if isTitleRow(rows[0]) && len(rows) > 1 {
		rows = rows[1:]
	}

	header := cleanHeader(rows[0])
	data := rows[1:]
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: only a header row", ErrNoData)
	}

	mapping := analyzeColumns(header)
	res := &Result{Supplies: []models.Supply{}, Header: header, Mapping: mapping, Warnings: []string{}}

	for i, row := range data {
		s, warn, ok := mapRow(row, mapping)
		if warn != "" {
			// +2: one-based and the header row
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", i+2, warn))
		}
		if ok {
			res.Supplies = append(res.Supplies, s)
		}
	}

	if len(res.Supplies) == 0 {
		return nil, fmt.Errorf("%w: no row has a product code or description; available columns: %s",
			ErrNoData, strings.Join(header, ", "))
	}
	return res, nil
}

// isTitleRow detects product-master exports that put a title above the header.
func isTitleRow(row []string) bool {
	for _, c := range row {
		l := strings.ToLower(c)
		if strings.Contains(l, "product") && strings.Contains(l, "master") {
			return true
		}
	}
	return false
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func cleanHeader(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}
