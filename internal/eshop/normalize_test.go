package eshop

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(payload), &v))
	return v
}

func TestNormalizeOrdersShapes(t *testing.T) {
	// All shapes must yield the identical normalized order list.
	payloads := map[string]string{
		"bare list":         `[{"id_order": 1}, {"id_order": 2}]`,
		"orders wrapper":    `{"orders": [{"id_order": 1}, {"id_order": 2}]}`,
		"data wrapper":      `{"data": [{"id_order": 1}, {"id_order": 2}]}`,
		"nested in params":  `{"params": {"orderList": [{"id_order": 1}, {"id_order": 2}]}}`,
		"last resort scan":  `{"meta": "x", "whatever": [{"id_order": 1}, {"id_order": 2}]}`,
		"scan one level in": `{"meta": "x", "wrap": {"unknown_key": [{"id_order": 1}, {"id_order": 2}]}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			orders, dropped, err := NormalizeOrders(decode(t, payload))
			require.NoError(t, err)
			assert.Zero(t, dropped)
			require.Len(t, orders, 2)
			assert.Equal(t, 1, orders[0].ID())
			assert.Equal(t, 2, orders[1].ID())
		})
	}
}

func TestNormalizeOrdersDropsNonRecords(t *testing.T) {
	orders, dropped, err := NormalizeOrders(decode(t, `[{"id_order": 1}, "not-a-record", 42]`))

	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].ID())
}

func TestNormalizeOrdersStructuralError(t *testing.T) {
	for name, payload := range map[string]string{
		"scalar":         `"just a string"`,
		"number":         `42`,
		"object no list": `{"status": "ok", "count": 3}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := NormalizeOrders(decode(t, payload))
			assert.ErrorIs(t, err, ErrUnrecognizedShape)
		})
	}
}

func TestNormalizeOrdersEmptyListIsNotAnError(t *testing.T) {
	orders, dropped, err := NormalizeOrders(decode(t, `{"orders": []}`))

	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, orders)
}

func TestNormalizeOrdersKnownKeyWinsOverScan(t *testing.T) {
	payload := `{"aaa": [{"id_order": 99}], "orders": [{"id_order": 1}]}`

	orders, _, err := NormalizeOrders(decode(t, payload))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].ID())
}
