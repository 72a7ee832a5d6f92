package aging_risk

import (
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func shipment(code, date string, qty float64) domain.ShipmentRecord {
	return domain.ShipmentRecord{
		OrderDate:   day(date),
		Region:      "WEST",
		Salesperson: "rep-1",
		ProductCode: code,
		Quantity:    qty,
	}
}

// dailyShipments returns one shipment of qty per day, from..to inclusive.
func dailyShipments(code, from, to string, qty float64) []domain.ShipmentRecord {
	var out []domain.ShipmentRecord
	for d := day(from); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.ShipmentRecord{OrderDate: d, ProductCode: code, Quantity: qty})
	}
	return out
}

func batch(code, number, produced string, qty, price float64) domain.InventoryBatch {
	return domain.InventoryBatch{
		ProductCode:     code,
		Description:     "product " + code,
		StorageLocation: "WH-1",
		ProductionDate:  day(produced),
		BatchNumber:     number,
		Quantity:        qty,
		UnitPrice:       price,
	}
}
