package eshop

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedShape is returned when no order list can be located in
// the decoded API response. It is structural, not transient: the caller
// must fail, never treat it as zero orders.
var ErrUnrecognizedShape = errors.New("unrecognized API response shape")

// listKeys are the wrapper keys an order list is known to live under,
// in priority order.
var listKeys = []string{"orders", "data", "items", "result", "order_list", "orderList"}

// NormalizeOrders locates the order list in a decoded API response and
// coerces its entries to Order records. Accepted shapes:
//
//   - a bare array of records
//   - a wrapper object with the list under one of listKeys
//   - the same wrapper nested one level under "params"
//   - as a last resort, the first array-valued field found by scanning
//     the object's values, one nesting level deep
//
// Entries that are not record-shaped are dropped; the count of dropped
// entries is returned so the caller can warn about them.
func NormalizeOrders(raw any) ([]Order, int, error) {
	list, ok := findList(raw)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %T", ErrUnrecognizedShape, raw)
	}

	orders := make([]Order, 0, len(list))
	dropped := 0
	for _, e := range list {
		m, ok := AsMap(e)
		if !ok {
			dropped++
			continue
		}
		orders = append(orders, Order(m))
	}
	return orders, dropped, nil
}

func findList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		for _, k := range listKeys {
			if l, ok := v[k].([]any); ok {
				return l, true
			}
		}
		if params, ok := AsMap(v["params"]); ok {
			for _, k := range listKeys {
				if l, ok := params[k].([]any); ok {
					return l, true
				}
			}
		}
		return scanForList(v, 1)
	}
	return nil, false
}

// scanForList finds the first array-valued field in key order,
// descending depth levels into nested objects.
func scanForList(m map[string]any, depth int) ([]any, bool) {
	keys := sortedKeys(m)
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l, true
		}
	}
	if depth > 0 {
		for _, k := range keys {
			if mm, ok := AsMap(m[k]); ok {
				if l, ok := scanForList(mm, depth-1); ok {
					return l, true
				}
			}
		}
	}
	return nil, false
}
