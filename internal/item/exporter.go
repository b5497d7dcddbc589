// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// FileRecord is one item as it appears in an export file. The importer reads
// the same shape back.
type FileRecord struct {
	Name        string      `json:"name" jsonschema:"required,minLength=1,maxLength=100"`
	Price       json.Number `json:"price" jsonschema:"required"`
	Category    string      `json:"category" jsonschema:"required"`
	IsPurchased bool        `json:"is_purchased"`
}

// Exporter writes a user's items to JSON or CSV.
type Exporter struct {
	items ItemRepository
}

// NewExporter creates an Exporter.
func NewExporter(items ItemRepository) (*Exporter, error) {
	if items == nil {
		return nil, oops.Code("EXPORT_INVALID_CONFIG").Errorf("item repository is required")
	}
	return &Exporter{items: items}, nil
}

// Export writes every item owned by userID, newest first, and returns how
// many were written.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, userID ulid.ULID) (int, error) {
	ctx, span := tracer.Start(ctx, "item.export")
	defer span.End()

	if format != FormatJSON && format != FormatCSV {
		return 0, oops.Code("EXPORT_UNSUPPORTED_FORMAT").
			With("format", string(format)).
			Errorf("unsupported format %q: only json and csv are supported", format)
	}

	items, err := e.items.List(ctx, userID, nil)
	if err != nil {
		return 0, oops.Code("EXPORT_FAILED").
			With("operation", "list items").
			With("user_id", userID.String()).
			Wrap(err)
	}

	records := make([]FileRecord, 0, len(items))
	for _, it := range items {
		records = append(records, FileRecord{
			Name:        it.Name,
			Price:       json.Number(it.Price.StringFixed(2)),
			Category:    it.CategoryName,
			IsPurchased: it.Purchased,
		})
	}

	if format == FormatCSV {
		err = writeCSV(w, records)
	} else {
		err = writeJSON(w, records)
	}
	if err != nil {
		return 0, oops.Code("EXPORT_WRITE_FAILED").With("format", string(format)).Wrap(err)
	}
	return len(records), nil
}

func writeJSON(w io.Writer, records []FileRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []FileRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordFields); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Name, r.Price.String(), r.Category, strconv.FormatBool(r.IsPurchased)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
