package spreadsheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestParse_CSVComma(t *testing.T) {
	in := "Store,Store Name,Product Code,Product Description,Category,UOM,Expiry Date\n" +
		"12,Central,GZ-01,Sterile gauze,WOUND CARE,BOX,2025-03-01\n" +
		"12,Central,SY-05,Syringe 5ml,INJECTION,EA,\n"

	res, err := Parse(strings.NewReader(in), FormatCSV, Options{})
	require.NoError(t, err)
	require.Len(t, res.Supplies, 2)

	assert.Equal(t, models.Supply{
		ProductCode:        "GZ-01",
		Store:              12,
		StoreName:          "Central",
		ProductDescription: "Sterile gauze",
		Category:           "WOUND CARE",
		UnitOfMeasure:      "BOX",
		ExpiryDate:         "2025-03-01",
	}, res.Supplies[0])
	assert.Empty(t, res.Supplies[1].ExpiryDate)
	assert.Empty(t, res.Warnings)
}

func TestParse_CSVSemicolonWithDefaults(t *testing.T) {
	in := "sku;name\nA-1;Bandage\n;Unnamed thing\nB-2;\n;\n"

	res, err := Parse(strings.NewReader(in), FormatCSV, Options{})
	require.NoError(t, err)
	require.Len(t, res.Supplies, 3)

	first := res.Supplies[0]
	assert.Equal(t, "A-1", first.ProductCode)
	assert.Equal(t, "Bandage", first.ProductDescription)
	assert.Equal(t, 0, first.Store)
	assert.Equal(t, DefaultStoreName, first.StoreName)
	assert.Equal(t, DefaultCategory, first.Category)
	assert.Equal(t, DefaultUnitOfMeasure, first.UnitOfMeasure)

	assert.Empty(t, res.Supplies[1].ProductCode, "kept for the importer to report")
	assert.Equal(t, "B-2", res.Supplies[2].ProductDescription, "description falls back to the code")

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "row 3")
	assert.Contains(t, res.Warnings[0], "missing product code")
}

func TestParse_CSVWindows1251(t *testing.T) {
	text := "Код;Наименование;Категория\nБ-1;Бинт стерильный;ПЕРЕВЯЗКА\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(text)
	require.NoError(t, err)

	res, err := Parse(strings.NewReader(encoded), FormatCSV, Options{Encoding: "windows-1251"})
	require.NoError(t, err)
	require.Len(t, res.Supplies, 1)
	assert.Equal(t, "Б-1", res.Supplies[0].ProductCode)
	assert.Equal(t, "Бинт стерильный", res.Supplies[0].ProductDescription)
}

func TestParse_UnknownEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n1,2\n"), FormatCSV, Options{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParse_TitleRowSkipped(t *testing.T) {
	in := "Product Master Report,,\nProductCode,ProductDescription,UOM\nX1,Gloves,PAIR\n"

	res, err := Parse(strings.NewReader(in), FormatCSV, Options{})
	require.NoError(t, err)
	require.Len(t, res.Supplies, 1)
	assert.Equal(t, "X1", res.Supplies[0].ProductCode)
	assert.Equal(t, "PAIR", res.Supplies[0].UnitOfMeasure)
	assert.Equal(t, []string{"ProductCode", "ProductDescription", "UOM"}, res.Header)
}

func TestParse_BOMHeader(t *testing.T) {
	in := "\ufeffProduct Code,Description\nC1,Mask\n"

	res, err := Parse(strings.NewReader(in), FormatCSV, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Mapping.Column(FieldProductCode))
	assert.Equal(t, "C1", res.Supplies[0].ProductCode)
}

func TestParse_NoData(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "blank lines", in: "\n\n,,\n"},
		{name: "header only", in: "code,description\n"},
		{name: "no usable rows", in: "code,description\n,\n ,  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), FormatCSV, Options{})
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Item Code", "Item Description", "Class", "Units", "Store Number", "Expiration"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"GL-100", "Nitrile gloves", "PPE", "BOX", 7, "15.06.2025"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"MK-200", "Face mask", "PPE", "EA", 7, ""}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := Parse(bytes.NewReader(buf.Bytes()), FormatXLSX, Options{})
	require.NoError(t, err)
	require.Len(t, res.Supplies, 2)
	assert.Equal(t, models.Supply{
		ProductCode:        "GL-100",
		Store:              7,
		StoreName:          DefaultStoreName,
		ProductDescription: "Nitrile gloves",
		Category:           "PPE",
		UnitOfMeasure:      "BOX",
		ExpiryDate:         "2025-06-15",
	}, res.Supplies[0])
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "supplies.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,description\nA,Alpha\n"), 0o600))
	res, err := ParseFile(path, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Supplies, 1)

	_, err = ParseFile(filepath.Join(dir, "supplies.pdf"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	big := filepath.Join(dir, "big.csv")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxFileSize+1), 0o600))
	_, err = ParseFile(big, Options{})
	assert.ErrorIs(t, err, filex.ErrTooLarge)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/List.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromPath("list.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromPath("list.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
