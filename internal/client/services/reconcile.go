package services

import "github.com/dmitrijs2005/medsupply/internal/client/models"

// Reconcile splits candidates into records whose product code is not in
// existing and records whose code is. Matching is exact and case-sensitive;
// both partitions keep the input order.
func Reconcile(candidates []models.Supply, existing map[string]struct{}) models.DuplicateCheckResult {
	res := models.DuplicateCheckResult{
		NewItems:       []models.Supply{},
		DuplicateItems: []models.Supply{},
	}
	for _, c := range candidates {
		if _, ok := existing[c.ProductCode]; ok {
			res.DuplicateItems = append(res.DuplicateItems, c)
		} else {
			res.NewItems = append(res.NewItems, c)
		}
	}
	return res
}
