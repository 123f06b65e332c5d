package salesync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/varejodata/salesync_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportResult reports what happened to one importer batch. Re-running the
// same range yields Inserted=0 and Skipped=Received on the second pass.
type ImportResult struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ImportSaleLines persists the sale lines from the batch that are not
// already present, keyed by (sale code, product ref, item seq).
//
// Existence is decided by one bulk query batched over the key components;
// exact triple matching happens in memory so the IN lists never act as a
// cross product. Malformed items are skipped, counted and recorded against
// the run; they never fail the batch.
func ImportSaleLines(ctx context.Context, db *gorm.DB, runID uint, items []RawSaleItem) (ImportResult, error) {
	result := ImportResult{Received: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{}, len(items))
	var candidates []models.SaleLine
	for _, item := range items {
		line, reason := toSaleLine(item)
		if reason != "" {
			result.Skipped++
			recordItemError(ctx, db, runID, item, "invalid_item", reason)
			continue
		}
		// A batch can carry the same upstream record twice; only the first
		// occurrence is a candidate.
		key := line.NaturalKey()
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, line)
	}

	if len(candidates) == 0 {
		return result, nil
	}

	existing, err := existingLineKeys(ctx, db, candidates)
	if err != nil {
		return result, err
	}

	var toInsert []models.SaleLine
	for _, line := range candidates {
		if _, ok := existing[line.NaturalKey()]; ok {
			result.Skipped++
			continue
		}
		toInsert = append(toInsert, line)
	}

	if len(toInsert) > 0 {
		// DO NOTHING keeps a concurrent import of the same window benign.
		if err := db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&toInsert, 500).Error; err != nil {
			return result, err
		}
	}
	result.Inserted = len(toInsert)
	return result, nil
}

// existingLineKeys loads the already-imported subset of the candidate key
// space in one query per key-component batch.
func existingLineKeys(ctx context.Context, db *gorm.DB, candidates []models.SaleLine) (map[string]struct{}, error) {
	saleCodes := make(map[string]struct{})
	productRefs := make(map[string]struct{})
	itemSeqs := make(map[int]struct{})
	for _, line := range candidates {
		saleCodes[line.SaleCode] = struct{}{}
		productRefs[line.ProductRef] = struct{}{}
		itemSeqs[line.ItemSeq] = struct{}{}
	}

	codeList := make([]string, 0, len(saleCodes))
	for code := range saleCodes {
		codeList = append(codeList, code)
	}
	refList := make([]string, 0, len(productRefs))
	for ref := range productRefs {
		refList = append(refList, ref)
	}
	seqList := make([]int, 0, len(itemSeqs))
	for seq := range itemSeqs {
		seqList = append(seqList, seq)
	}

	var rows []models.SaleLine
	if err := db.WithContext(ctx).
		Select("sale_code", "product_ref", "item_seq").
		Where("sale_code IN ?", codeList).
		Where("product_ref IN ?", refList).
		Where("item_seq IN ?", seqList).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		existing[row.NaturalKey()] = struct{}{}
	}
	return existing, nil
}

// toSaleLine validates one upstream item and maps it to a SaleLine. The
// returned reason is empty for a valid item.
func toSaleLine(item RawSaleItem) (models.SaleLine, string) {
	if item.SaleCode == "" {
		return models.SaleLine{}, "sale code missing"
	}
	if item.ProductRef == "" {
		return models.SaleLine{}, "product reference code missing"
	}
	if item.ItemSeq <= 0 {
		return models.SaleLine{}, fmt.Sprintf("invalid item sequence %d", item.ItemSeq)
	}
	if item.StoreCode == "" {
		return models.SaleLine{}, "store code missing"
	}
	if item.SoldAt.IsZero() {
		return models.SaleLine{}, "sale timestamp missing"
	}
	channel, err := models.ParseSaleChannel(item.Channel)
	if err != nil {
		return models.SaleLine{}, err.Error()
	}

	return models.SaleLine{
		SaleCode:         item.SaleCode,
		ProductRef:       item.ProductRef,
		ItemSeq:          item.ItemSeq,
		StoreCode:        item.StoreCode,
		CollaboratorCode: item.CollaboratorCode,
		Channel:          channel,
		Qty:              item.Qty,
		UnitPrice:        item.UnitPrice,
		TotalPrice:       item.TotalPrice,
		SoldAt:           item.SoldAt.UTC(),
	}, ""
}

func recordItemError(ctx context.Context, db *gorm.DB, runID uint, item RawSaleItem, code, message string) {
	if runID == 0 {
		return
	}
	payload, _ := json.Marshal(item)
	errRec := models.SyncItemError{
		SyncRunId:   runID,
		SaleCode:    item.SaleCode,
		ProductRef:  item.ProductRef,
		ItemSeq:     item.ItemSeq,
		ErrorCode:   code,
		Message:     message,
		PayloadJSON: payload,
	}
	_ = db.WithContext(ctx).Create(&errRec).Error
}
