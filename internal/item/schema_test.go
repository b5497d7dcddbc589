// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/shoplist/internal/item"
	"github.com/holomush/shoplist/pkg/errutil"
)

func TestGenerateRecordSchema(t *testing.T) {
	data, err := item.GenerateRecordSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, item.SchemaID, schema["$id"])
	assert.Equal(t, "array", schema["type"])

	items, ok := schema["items"].(map[string]any)
	require.True(t, ok, "items should be an inline object schema")
	assert.ElementsMatch(t, []any{"name", "price", "category"}, items["required"])

	props, ok := items["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "is_purchased")
	price, ok := props["price"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, price["anyOf"], 2)
}

func TestCheckPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"valid", `[{"name":"Рис","price":62.4,"category":"Продукти","is_purchased":false}]`, ""},
		{"string price with comma", `[{"name":"Рис","price":"62,40","category":"Продукти","is_purchased":"yes"}]`, ""},
		{"exponent price", `[{"name":"Рис","price":1e2,"category":"Продукти"}]`, ""},
		{"missing purchased flag", `[{"name":"Рис","price":1,"category":"Продукти"}]`, ""},
		{"empty array", `[]`, ""},
		{"missing category", `[{"name":"Рис","price":1}]`, "SCHEMA_VALIDATION_FAILED"},
		{"price out of range", `[{"name":"Рис","price":10000,"category":"Продукти"}]`, "SCHEMA_VALIDATION_FAILED"},
		{"price text", `[{"name":"Рис","price":"abc","category":"Продукти"}]`, "SCHEMA_VALIDATION_FAILED"},
		{"top-level object", `{"name":"Рис"}`, "SCHEMA_VALIDATION_FAILED"},
		{"not json", `name,price`, "IMPORT_MALFORMED_PAYLOAD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := item.CheckPayload(strings.NewReader(tt.payload))
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}
