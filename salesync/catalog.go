package salesync

import (
	"context"

	"github.com/varejodata/salesync_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveProducts registers the products in the batch that the catalog does
// not know yet and returns their reference codes.
//
// One set-membership query decides what is new: per-item catalog lookups do
// not survive batches in the thousands. Insert conflicts from a concurrent
// batch are benign (the row exists either way) and are swallowed by the
// ON CONFLICT DO NOTHING clause.
func ResolveProducts(ctx context.Context, db *gorm.DB, items []RawSaleItem) ([]string, error) {
	candidates := distinctProducts(items)
	if len(candidates) == 0 {
		return nil, nil
	}

	refs := make([]string, 0, len(candidates))
	for ref := range candidates {
		refs = append(refs, ref)
	}

	var existing []string
	if err := db.WithContext(ctx).
		Model(&models.Product{}).
		Where("ref_code IN ?", refs).
		Pluck("ref_code", &existing).Error; err != nil {
		return nil, err
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, ref := range existing {
		existingSet[ref] = struct{}{}
	}

	var newRefs []string
	var toInsert []models.Product
	for ref, item := range candidates {
		if _, ok := existingSet[ref]; ok {
			continue
		}
		newRefs = append(newRefs, ref)
		toInsert = append(toInsert, models.Product{
			RefCode:     ref,
			Section:     item.Section,
			GroupName:   item.Group,
			Subgroup:    item.Subgroup,
			Brand:       item.Brand,
			Description: item.Description,
		})
	}

	if len(toInsert) == 0 {
		return nil, nil
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&toInsert, 500).Error; err != nil {
		return nil, err
	}
	return newRefs, nil
}

// RefreshProductDescriptions updates catalog rows whose description-bearing
// fields no longer match upstream. It runs as a separate pass after
// resolution; the dedup flow itself never updates.
func RefreshProductDescriptions(ctx context.Context, db *gorm.DB, items []RawSaleItem) (int, error) {
	candidates := distinctProducts(items)
	if len(candidates) == 0 {
		return 0, nil
	}

	refs := make([]string, 0, len(candidates))
	for ref := range candidates {
		refs = append(refs, ref)
	}

	var existing []models.Product
	if err := db.WithContext(ctx).
		Where("ref_code IN ?", refs).
		Find(&existing).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, product := range existing {
		item, ok := candidates[product.RefCode]
		if !ok {
			continue
		}
		if !product.DescriptiveFieldsDiffer(item.Section, item.Group, item.Subgroup, item.Brand, item.Description) {
			continue
		}
		err := db.WithContext(ctx).
			Model(&models.Product{}).
			Where("ref_code = ?", product.RefCode).
			Updates(map[string]interface{}{
				"section":     item.Section,
				"group_name":  item.Group,
				"subgroup":    item.Subgroup,
				"brand":       item.Brand,
				"description": item.Description,
			}).Error
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// distinctProducts keeps the first occurrence of each non-empty reference
// code in the batch.
func distinctProducts(items []RawSaleItem) map[string]RawSaleItem {
	out := make(map[string]RawSaleItem)
	for _, item := range items {
		if item.ProductRef == "" {
			continue
		}
		if _, ok := out[item.ProductRef]; !ok {
			out[item.ProductRef] = item
		}
	}
	return out
}
