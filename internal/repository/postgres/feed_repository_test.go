package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAllQuery(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		want    string
		wantErr bool
	}{
		{name: "plain", table: "shipments", want: `SELECT * FROM "shipments"`},
		{name: "schema qualified", table: "sales.shipments", want: `SELECT * FROM "sales"."shipments"`},
		{name: "quotes escaped", table: `bad"name`, want: `SELECT * FROM "bad""name"`},
		{name: "empty", table: "  ", wantErr: true},
		{name: "empty part", table: "sales.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectAllQuery(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRawRecord(t *testing.T) {
	rec := toRawRecord(map[string]interface{}{
		"sku":      []byte("A-1"),
		"quantity": int64(5),
		"price":    nil,
	})

	assert.Equal(t, "A-1", rec["sku"])
	assert.Equal(t, int64(5), rec["quantity"])
	assert.Nil(t, rec["price"])
}
