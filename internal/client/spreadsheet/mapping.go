package spreadsheet

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Field is a supply attribute a column can be mapped to.
type Field string

const (
	FieldStore              Field = "store"
	FieldStoreName          Field = "storeName"
	FieldProductCode        Field = "productCode"
	FieldProductDescription Field = "productDescription"
	FieldCategory           Field = "category"
	FieldUnitOfMeasure      Field = "unitOfMeasure"
	FieldExpiryDate         Field = "expiryDate"
)

// Fields lists the mappable attributes in display order.
var Fields = []Field{
	FieldStore, FieldStoreName, FieldProductCode, FieldProductDescription,
	FieldCategory, FieldUnitOfMeasure, FieldExpiryDate,
}

var synonyms = map[Field][]string{
	FieldStore: {
		"store", "store_number", "store_id", "warehouse_id", "location", "shop",
	},
	FieldStoreName: {
		"store_name", "storename", "store name", "warehouse", "location_name", "shop_name", "facility",
	},
	FieldProductCode: {
		"product_code", "productcode", "product code", "code", "item_code", "sku",
		"part_number", "item_number", "product_id", "id", "barcode",
	},
	FieldProductDescription: {
		"product_description", "productdescription", "product description", "description",
		"item_description", "name", "product_name", "item_name", "title", "product", "item", "details",
	},
	FieldCategory: {
		"category", "product_category", "item_category", "type", "class", "group",
	},
	FieldUnitOfMeasure: {
		"uom", "unit", "unit_of_measure", "measure", "units", "packaging",
	},
	FieldExpiryDate: {
		"expiry_date", "expiry", "expiration", "expiration_date", "exp_date", "best_before", "use_by",
	},
}

// Match scores.
const (
	scoreExact    = 100
	scoreContains = 80
	scoreFuzzy    = 60
	maxDistance   = 2
)

// Mapping is the column index of each mapped field.
type Mapping map[Field]int

// Column returns the index mapped to f, or -1.
func (m Mapping) Column(f Field) int {
	if i, ok := m[f]; ok {
		return i
	}
	return -1
}

// analyzeColumns assigns each field its best scoring column. Higher scores
// claim first and a column serves at most one field.
func analyzeColumns(header []string) Mapping {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeName(h)
	}

	type candidate struct {
		field, col, score int
	}
	var cands []candidate
	for fi, f := range Fields {
		for ci, col := range normalized {
			if s := matchScore(col, synonyms[f]); s > 0 {
				cands = append(cands, candidate{field: fi, col: ci, score: s})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	m := Mapping{}
	used := make(map[int]bool, len(header))
	for _, c := range cands {
		f := Fields[c.field]
		if _, ok := m[f]; ok || used[c.col] {
			continue
		}
		m[f] = c.col
		used[c.col] = true
	}

	if _, ok := m[FieldProductCode]; !ok && len(header) > 0 {
		m[FieldProductCode] = 0
	}
	if _, ok := m[FieldProductDescription]; !ok && len(header) > 0 {
		if len(header) > 1 {
			m[FieldProductDescription] = 1
		} else {
			m[FieldProductDescription] = 0
		}
	}
	return m
}

// matchScore is the best score of col against any candidate name.
func matchScore(col string, candidates []string) int {
	if col == "" {
		return 0
	}
	best := 0
	for _, c := range candidates {
		name := normalizeName(c)
		var s int
		switch {
		case col == name:
			s = scoreExact
		case strings.Contains(col, name) || strings.Contains(name, col):
			s = scoreContains
		case levenshtein(col, name) <= maxDistance:
			s = scoreFuzzy
		}
		if s > best {
			best = s
		}
	}
	return best
}

// normalizeName lowercases s and keeps only letters and digits.
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
