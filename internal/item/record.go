// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names shared by the JSON and CSV file formats, in CSV column order.
var recordFields = []string{"name", "price", "category", "is_purchased"}

// Record is one imported row after coercion and before validation. Absent
// fields are empty strings.
type Record struct {
	// Row is the 1-based position of the record in its file, excluding any header.
	Row       int
	Name      string
	Price     string
	Category  string
	Purchased bool
}

// ParseBool is the permissive boolean used by imports: 1, true, yes and y
// are true in any case, everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// recordFromJSON coerces a decoded JSON object. ok is false when the element
// is not an object.
func recordFromJSON(row int, v any) (rec Record, ok bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Record{}, false
	}
	rec = Record{
		Row:      row,
		Name:     jsonString(obj["name"]),
		Price:    jsonString(obj["price"]),
		Category: jsonString(obj["category"]),
	}
	switch p := obj["is_purchased"].(type) {
	case bool:
		rec.Purchased = p
	case nil:
	default:
		rec.Purchased = ParseBool(jsonString(p))
	}
	return rec, true
}

// jsonString renders a scalar JSON value the way a user would have typed it.
// Numbers keep their literal text unless written with an exponent, which is
// expanded to plain decimal form. Arrays and objects become empty.
func jsonString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		if strings.ContainsAny(string(s), "eE") {
			if d, err := decimal.NewFromString(string(s)); err == nil {
				return d.String()
			}
		}
		return s.String()
	case bool:
		if s {
			return "1"
		}
		return ""
	}
	return ""
}

// recordFromCSV coerces a CSV row. ok is false when the row does not have
// one field per header column.
func recordFromCSV(row int, fields []string) (rec Record, ok bool) {
	if len(fields) != len(recordFields) {
		return Record{}, false
	}
	return Record{
		Row:       row,
		Name:      fields[0],
		Price:     fields[1],
		Category:  fields[2],
		Purchased: ParseBool(fields[3]),
	}, true
}
