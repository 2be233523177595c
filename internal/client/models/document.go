package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medsupply/internal/common"
)

// CurrentSchemaVersion is written into every supply document.
const CurrentSchemaVersion = 1

// Document field names, schema version 1.
const (
	FieldSchemaVersion      = "schemaVersion"
	FieldProductCode        = "productCode"
	FieldStore              = "store"
	FieldStoreName          = "storeName"
	FieldProductDescription = "productDescription"
	FieldCategory           = "category"
	FieldUnitOfMeasure      = "unitOfMeasure"
	FieldImageURL           = "imageUrl"
	FieldExpiryDate         = "expiryDate"
	FieldImportedBy         = "importedBy"
	FieldVersion            = "version"
)

// Field names written by the legacy (unversioned) client.
var legacyFields = map[string]string{
	FieldProductCode:        "ProductCode",
	FieldStore:              "Store",
	FieldStoreName:          "StoreName",
	FieldProductDescription: "ProductDescription",
	FieldCategory:           "Category",
	FieldUnitOfMeasure:      "UOM",
	FieldImageURL:           "imageUrl",
	FieldExpiryDate:         "expiryDate",
}

// EncodeSupply renders s as a remote document in the current schema.
func EncodeSupply(s StoredSupply) map[string]any {
	doc := map[string]any{
		FieldSchemaVersion:      CurrentSchemaVersion,
		FieldProductCode:        s.ProductCode,
		FieldStore:              s.Store,
		FieldStoreName:          s.StoreName,
		FieldProductDescription: s.ProductDescription,
		FieldCategory:           s.Category,
		FieldUnitOfMeasure:      s.UnitOfMeasure,
		common.FieldCreatedAt:   s.Meta.CreatedAt,
		common.FieldUpdatedAt:   s.Meta.UpdatedAt,
		FieldImportedBy:         s.Meta.ImportedBy,
		FieldVersion:            s.Meta.Version,
	}
	if s.ImageURL != "" {
		doc[FieldImageURL] = s.ImageURL
	}
	if s.ExpiryDate != "" {
		doc[FieldExpiryDate] = s.ExpiryDate
	}
	return doc
}

// DecodeSupply reads a remote document stored under key. Legacy documents
// (no schemaVersion) use the old field names. Missing optional fields get
// defaults: empty image and expiry, version 0, product code = key.
func DecodeSupply(key string, data map[string]any) (StoredSupply, error) {
	if data == nil {
		return StoredSupply{}, fmt.Errorf("%w: document %q has no data", common.ErrValidation, key)
	}

	version, err := intField(data, FieldSchemaVersion)
	if err != nil {
		return StoredSupply{}, fmt.Errorf("document %q: %w", key, err)
	}

	name := func(f string) string { return f }
	if version == 0 {
		name = func(f string) string { return legacyFields[f] }
	}

	var s StoredSupply
	s.ProductCode = stringField(data, name(FieldProductCode))
	if s.ProductCode == "" {
		s.ProductCode = key
	}

	store, err := intField(data, name(FieldStore))
	if err != nil {
		return StoredSupply{}, fmt.Errorf("document %q: %w", key, err)
	}
	s.Store = int(store)
	s.StoreName = stringField(data, name(FieldStoreName))
	s.ProductDescription = stringField(data, name(FieldProductDescription))
	s.Category = stringField(data, name(FieldCategory))
	s.UnitOfMeasure = stringField(data, name(FieldUnitOfMeasure))
	s.ImageURL = stringField(data, name(FieldImageURL))
	s.ExpiryDate = stringField(data, name(FieldExpiryDate))

	s.Meta.CreatedAt = stringField(data, common.FieldCreatedAt)
	s.Meta.UpdatedAt = stringField(data, common.FieldUpdatedAt)
	s.Meta.ImportedBy = stringField(data, FieldImportedBy)
	if s.Meta.Version, err = intField(data, FieldVersion); err != nil {
		return StoredSupply{}, fmt.Errorf("document %q: %w", key, err)
	}

	return s, nil
}

func stringField(data map[string]any, name string) string {
	switch v := data[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// intField accepts the numeric shapes produced by JSON, structpb and Redis.
func intField(data map[string]any, name string) (int64, error) {
	switch v := data[name].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: field %s is not an integer: %v", common.ErrValidation, name, v)
		}
		return int64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %s: %v", common.ErrValidation, name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: field %s has type %T", common.ErrValidation, name, v)
	}
}
