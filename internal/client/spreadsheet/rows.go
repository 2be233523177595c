package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/xuri/excelize/v2"
)

// Defaults for columns missing from the file.
const (
	DefaultStoreName     = "Imported Store"
	DefaultCategory      = "IMPORTED"
	DefaultUnitOfMeasure = "EACH"
	DefaultDescription   = "Imported Item"
)

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"2-Jan-2006",
	"02-Jan-06",
	"01-02-06",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// mapRow builds a supply from row. ok is false when the row has neither a
// code nor a description. A row without a code keeps an empty code so the
// importer reports it.
func mapRow(row []string, m Mapping) (s models.Supply, warn string, ok bool) {
	cell := func(f Field) string {
		i := m.Column(f)
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	code := cell(FieldProductCode)
	desc := cell(FieldProductDescription)
	if code == "" && desc == "" {
		return models.Supply{}, "", false
	}

	s = models.Supply{
		ProductCode:        code,
		Store:              parseStore(cell(FieldStore)),
		StoreName:          orDefault(cell(FieldStoreName), DefaultStoreName),
		ProductDescription: desc,
		Category:           orDefault(cell(FieldCategory), DefaultCategory),
		UnitOfMeasure:      orDefault(cell(FieldUnitOfMeasure), DefaultUnitOfMeasure),
	}
	if s.ProductDescription == "" {
		s.ProductDescription = orDefault(code, DefaultDescription)
	}

	if raw := cell(FieldExpiryDate); raw != "" {
		d, err := normalizeDate(raw)
		if err != nil {
			warn = err.Error()
		} else {
			s.ExpiryDate = d
		}
	}
	if code == "" {
		warn = joinWarn(warn, "missing product code")
	}
	return s, warn, true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func joinWarn(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

// parseStore accepts integers and integral floats; anything else is 0.
func parseStore(v string) int {
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// normalizeDate renders a spreadsheet date as YYYY-MM-DD. Excel serial day
// numbers are accepted too.
func normalizeDate(v string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate), nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.Format(isoDate), nil
		}
	}
	return "", fmt.Errorf("unrecognised expiry date %q", v)
}
