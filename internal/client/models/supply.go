// Package models defines the client-side data model of the supply inventory:
// supplies, their import metadata, import statistics and the document
// encoding used at the remote store boundary.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/medsupply/internal/common"
)

// MaxProductCodeLength is the longest accepted product code, in characters.
const MaxProductCodeLength = 1500

var invalidKeyChars = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F/]`)

// Supply is one inventory item. ProductCode is the storage key.
type Supply struct {
	ProductCode        string `json:"productCode"`
	Store              int    `json:"store"`
	StoreName          string `json:"storeName"`
	ProductDescription string `json:"productDescription"`
	Category           string `json:"category"`
	UnitOfMeasure      string `json:"unitOfMeasure"`
	ImageURL           string `json:"imageUrl,omitempty"`
	// ExpiryDate is an ISO-8601 calendar date (YYYY-MM-DD) or empty.
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// ImportMetadata is attached to every remote supply document.
type ImportMetadata struct {
	CreatedAt  string
	UpdatedAt  string
	ImportedBy string
	Version    int64
}

// StoredSupply is a supply as it lives in the remote collection.
type StoredSupply struct {
	Supply
	Meta ImportMetadata
}

// ValidateProductCode checks a product code as a storage key and returns the
// trimmed code. Errors wrap common.ErrValidation.
func ValidateProductCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	switch {
	case trimmed == "":
		return "", fmt.Errorf("%w: empty product code", common.ErrValidation)
	case invalidKeyChars.MatchString(trimmed):
		return "", fmt.Errorf("%w: product code %q contains invalid characters", common.ErrValidation, trimmed)
	case utf8.RuneCountInString(trimmed) > MaxProductCodeLength:
		return "", fmt.Errorf("%w: product code too long (%d characters): %s...",
			common.ErrValidation, utf8.RuneCountInString(trimmed), truncate(trimmed, 50))
	}
	return trimmed, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Label names a supply in messages: its description, or "unknown item".
func (s Supply) Label() string {
	if d := strings.TrimSpace(s.ProductDescription); d != "" {
		return d
	}
	return "unknown item"
}

// Keys returns the product codes of supplies in order.
func Keys(supplies []Supply) []string {
	out := make([]string, len(supplies))
	for i, s := range supplies {
		out[i] = s.ProductCode
	}
	return out
}
