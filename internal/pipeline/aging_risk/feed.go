package aging_risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

// RawRecord is one column-keyed row as delivered by a loader. Column names are
// matched case- and punctuation-insensitively against known aliases.
type RawRecord map[string]any

// Feed is an input snapshot whose rows have not been typed yet.
type Feed struct {
	Shipments  []RawRecord        `json:"shipments"`
	Batches    []RawRecord        `json:"batches"`
	UnitPrices map[string]float64 `json:"unit_prices,omitempty"`
	// Prices are column-keyed product price rows. Entries in UnitPrices win
	// over them.
	Prices []RawRecord `json:"prices,omitempty"`
}

type column struct {
	field    string
	aliases  []string
	required bool
}

var shipmentColumns = []column{
	{field: "order_date", aliases: []string{"order_date", "order date", "date", "ship_date"}, required: true},
	{field: "region", aliases: []string{"region", "area"}},
	{field: "salesperson", aliases: []string{"salesperson", "sales_rep", "sales person"}},
	{field: "product_code", aliases: []string{"product_code", "product code", "sku", "item_code"}, required: true},
	{field: "quantity", aliases: []string{"quantity", "qty"}, required: true},
}

var batchColumns = []column{
	{field: "product_code", aliases: []string{"product_code", "product code", "sku", "item_code"}, required: true},
	{field: "description", aliases: []string{"description", "product_name", "nama", "name"}},
	{field: "storage_location", aliases: []string{"storage_location", "location", "warehouse"}},
	{field: "production_date", aliases: []string{"production_date", "production date", "manufacture_date", "mfg_date"}, required: true},
	{field: "batch_number", aliases: []string{"batch_number", "batch number", "batch", "lot_number", "lot"}},
	{field: "quantity", aliases: []string{"quantity", "qty", "stock"}, required: true},
	{field: "unit_price", aliases: []string{"unit_price", "unit price", "price", "hpp"}},
}

var priceColumns = []column{
	{field: "product_code", aliases: []string{"product_code", "product code", "sku", "item_code"}, required: true},
	{field: "unit_price", aliases: []string{"unit_price", "unit price", "price", "hpp"}, required: true},
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"20060102",
}

// Decode types the feed. It fails with *domain.StructuralInputError when a
// required column is missing from every row of a non-empty section; that is
// the only failure. Undecodable shipment rows are skipped and counted.
// Undecodable batch fields are left invalid so that batch validation excludes
// the batch later.
func (f Feed) Decode(referenceDate time.Time) (Input, error) {
	shipmentRows := normalizeRows(f.Shipments)
	batchRows := normalizeRows(f.Batches)
	priceRows := normalizeRows(f.Prices)

	if err := checkStructure("shipments", shipmentRows, shipmentColumns); err != nil {
		return Input{}, err
	}
	if err := checkStructure("batches", batchRows, batchColumns); err != nil {
		return Input{}, err
	}
	if err := checkStructure("prices", priceRows, priceColumns); err != nil {
		return Input{}, err
	}

	in := Input{
		ReferenceDate: referenceDate,
		Shipments:     make([]domain.ShipmentRecord, 0, len(shipmentRows)),
		Batches:       make([]domain.InventoryBatch, 0, len(batchRows)),
		UnitPrices:    mergePrices(priceRows, f.UnitPrices),
	}

	for _, row := range shipmentRows {
		rec, err := decodeShipment(row)
		if err != nil {
			in.SkippedShipmentRows++
			continue
		}
		in.Shipments = append(in.Shipments, rec)
	}

	for _, row := range batchRows {
		in.Batches = append(in.Batches, decodeBatch(row))
	}

	return in, nil
}

// normalizedRow maps normalized column names to raw values.
type normalizedRow map[string]any

func normalizeRows(rows []RawRecord) []normalizedRow {
	out := make([]normalizedRow, 0, len(rows))
	for _, r := range rows {
		n := make(normalizedRow, len(r))
		for k, v := range r {
			n[normalizeColumnName(k)] = v
		}
		out = append(out, n)
	}
	return out
}

func (r normalizedRow) lookup(c column) (any, bool) {
	for _, alias := range c.aliases {
		if v, ok := r[normalizeColumnName(alias)]; ok {
			return v, true
		}
	}
	return nil, false
}

func checkStructure(section string, rows []normalizedRow, columns []column) error {
	if len(rows) == 0 {
		return nil
	}

	var missing []string
	for _, c := range columns {
		if !c.required {
			continue
		}
		present := false
		for _, r := range rows {
			if _, ok := r.lookup(c); ok {
				present = true
				break
			}
		}
		if !present {
			missing = append(missing, c.field)
		}
	}

	if len(missing) > 0 {
		return &domain.StructuralInputError{Section: section, Missing: missing}
	}
	return nil
}

func columnByField(columns []column, field string) column {
	for _, c := range columns {
		if c.field == field {
			return c
		}
	}
	return column{field: field, aliases: []string{field}}
}

func decodeShipment(row normalizedRow) (domain.ShipmentRecord, error) {
	get := func(field string) any {
		v, _ := row.lookup(columnByField(shipmentColumns, field))
		return v
	}

	orderDate, ok := parseDate(get("order_date"))
	if !ok {
		return domain.ShipmentRecord{}, fmt.Errorf("%w: unparseable order_date %v", domain.ErrInvalidShipmentRecord, get("order_date"))
	}
	qty, ok := parseNumber(get("quantity"))
	if !ok {
		return domain.ShipmentRecord{}, fmt.Errorf("%w: unparseable quantity %v", domain.ErrInvalidShipmentRecord, get("quantity"))
	}
	code := parseString(get("product_code"))
	if code == "" {
		return domain.ShipmentRecord{}, fmt.Errorf("%w: missing product_code", domain.ErrInvalidShipmentRecord)
	}

	return domain.ShipmentRecord{
		OrderDate:   orderDate,
		Region:      parseString(get("region")),
		Salesperson: parseString(get("salesperson")),
		ProductCode: code,
		Quantity:    qty,
	}, nil
}

func decodeBatch(row normalizedRow) domain.InventoryBatch {
	get := func(field string) any {
		v, _ := row.lookup(columnByField(batchColumns, field))
		return v
	}

	// Zero date and NaN quantity are rejected by ValidateBatch
	productionDate, _ := parseDate(get("production_date"))
	qty, ok := parseNumber(get("quantity"))
	if !ok {
		qty = math.NaN()
	}
	price, _ := parseNumber(get("unit_price"))

	return domain.InventoryBatch{
		ProductCode:     parseString(get("product_code")),
		Description:     parseString(get("description")),
		StorageLocation: parseString(get("storage_location")),
		ProductionDate:  productionDate,
		BatchNumber:     parseString(get("batch_number")),
		Quantity:        qty,
		UnitPrice:       price,
	}
}

func mergePrices(rows []normalizedRow, explicit map[string]float64) map[string]float64 {
	if len(rows) == 0 {
		return explicit
	}

	prices := make(map[string]float64, len(rows)+len(explicit))
	for _, row := range rows {
		code, _ := row.lookup(columnByField(priceColumns, "product_code"))
		raw, _ := row.lookup(columnByField(priceColumns, "unit_price"))
		price, ok := parseNumber(raw)
		if key := parseString(code); key != "" && ok {
			prices[key] = price
		}
	}
	for code, price := range explicit {
		prices[code] = price
	}
	return prices
}

func parseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func parseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string, []byte:
		s := strings.ReplaceAll(parseString(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}

func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string, []byte:
		s := parseString(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}
