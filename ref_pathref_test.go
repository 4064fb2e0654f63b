package asyncschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	as "github.com/reoring/asyncschema"
)

func TestPathRef_Build(t *testing.T) {
	p := as.Root().Field("items").Index(2).Field("sku")
	assert.Equal(t, "items.2.sku", p.String())
	assert.Equal(t, []string{"items", "2", "sku"}, p.Parts())
	assert.Equal(t, "items.2.sku", as.At(".items..2.sku").String())
	assert.Equal(t, "", as.Root().Field("").String())

	base := as.At("a")
	_ = base.Field("b")
	assert.Equal(t, "a", base.String(), "builders do not share segments")
}

func TestPathRef_Error(t *testing.T) {
	err := as.At("items.0").Error("%s is out of stock (%d left)", "items.0", 0)
	assert.Equal(t, "items.0", err.Field)
	assert.Equal(t, "items.0 is out of stock (0 left)", err.Message)
}

func TestPathRef_Lookup(t *testing.T) {
	type line struct {
		SKU   string `json:"sku"`
		Qty   int
		notes string
	}
	data := map[string]any{
		"order": map[string]any{
			"lines": []line{{SKU: "A", Qty: 1, notes: "x"}},
			"tags":  []any{"gift"},
		},
		"ptr": &line{SKU: "P"},
	}
	cases := []struct {
		path string
		want any
		ok   bool
	}{
		{"order.lines.0.sku", "A", true},
		{"order.lines.0.Qty", 1, true},
		{"order.lines.0.notes", nil, false},
		{"order.lines.1", nil, false},
		{"order.tags.0", "gift", true},
		{"order.tags.x", nil, false},
		{"ptr.sku", "P", true},
		{"order.missing", nil, false},
		{"order.tags.0.deeper", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := as.At(tc.path).Lookup(data)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	got, ok := as.Root().Lookup(data)
	assert.True(t, ok)
	assert.Equal(t, data, got)
}
