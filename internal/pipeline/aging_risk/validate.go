package aging_risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

// ValidateBatch reports why a batch cannot be assessed. The returned error
// wraps domain.ErrInvalidBatchRecord.
func ValidateBatch(b domain.InventoryBatch) error {
	if strings.TrimSpace(b.ProductCode) == "" {
		return fmt.Errorf("%w: missing product_code", domain.ErrInvalidBatchRecord)
	}
	if b.ProductionDate.IsZero() {
		return fmt.Errorf("%w: missing or unparseable production_date", domain.ErrInvalidBatchRecord)
	}
	if math.IsNaN(b.Quantity) || math.IsInf(b.Quantity, 0) {
		return fmt.Errorf("%w: unparseable quantity", domain.ErrInvalidBatchRecord)
	}
	if b.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity %v", domain.ErrInvalidBatchRecord, b.Quantity)
	}
	return nil
}
