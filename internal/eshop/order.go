// Package eshop talks to the Upgates-style shop API and models its
// loosely-typed order records.
package eshop

import (
	"sort"
	"strconv"
	"strings"
)

// Order is one raw order record from the shop API. The API is loose about
// shapes and field presence, so the record stays a plain map and every
// read goes through a defensive accessor.
type Order map[string]any

// ID returns the order identity used for ordering and the watermark.
// Missing or unparseable ids read as 0.
func (o Order) ID() int {
	v, ok := PickValue(o, "id_order", "id")
	if !ok {
		return 0
	}
	n, ok := ToInt(v)
	if !ok {
		return 0
	}
	return n
}

// Number returns the human-facing order number, distinct from ID.
func (o Order) Number() string {
	return PickString(o, "number")
}

// Billing returns the customer billing information block, or nil.
func (o Order) Billing() map[string]any {
	customer, ok := AsMap(o["customer"])
	if !ok {
		return nil
	}
	billing, ok := AsMap(customer["billing_information"])
	if !ok {
		return nil
	}
	return billing
}

// Delivery returns the delivery block, or nil.
func (o Order) Delivery() map[string]any {
	m, _ := AsMap(o["delivery"])
	return m
}

// Payment returns the payment block, or nil.
func (o Order) Payment() map[string]any {
	m, _ := AsMap(o["payment"])
	return m
}

// Rows returns the line items of the order, dropping entries that are
// not record-shaped.
func (o Order) Rows() []map[string]any {
	raw, ok := o["row_list"].([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := AsMap(e); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// PickValue returns the first present, non-nil value among keys.
// Priority is the key order, first-present-wins.
func PickValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// PickString returns the first present value among keys rendered as a
// trimmed string, or "" when none is present.
func PickString(m map[string]any, keys ...string) string {
	v, ok := PickValue(m, keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(ToString(v))
}

// PickFloat returns the first present value among keys that converts to
// a number.
func PickFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if f, ok := ToFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// ToString renders a scalar JSON value as a string.
func ToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// ToInt converts a scalar JSON value to an int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// ToFloat converts a scalar JSON value to a float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsMap asserts a value as a JSON object.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// sortedKeys gives deterministic iteration order over a JSON object.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
