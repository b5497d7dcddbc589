// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Summary tallies an import.
type Summary struct {
	Imported int
	Skipped  int
}

// Importer loads items from JSON and CSV files.
type Importer struct {
	items      ItemRepository
	categories CategoryRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewImporter creates an Importer. A nil logger uses slog.Default().
func NewImporter(items ItemRepository, categories CategoryRepository, logger *slog.Logger) (*Importer, error) {
	if items == nil {
		return nil, oops.Code("IMPORT_INVALID_CONFIG").Errorf("item repository is required")
	}
	if categories == nil {
		return nil, oops.Code("IMPORT_INVALID_CONFIG").Errorf("category repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{items: items, categories: categories, logger: logger, now: time.Now}, nil
}

// Import reads payload in the given format and stores every valid record as
// an item owned by userID.
//
// A payload with the wrong overall shape fails as a whole before anything is
// stored. Once the shape is accepted, bad records are skipped and counted;
// each good record is stored on its own.
func (im *Importer) Import(ctx context.Context, payload io.Reader, format Format, userID ulid.ULID) (Summary, error) {
	ctx, span := tracer.Start(ctx, "item.import")
	defer span.End()

	var (
		records []any
		rows    [][]string
		err     error
	)
	switch format {
	case FormatJSON:
		records, err = decodeJSONArray(payload)
	case FormatCSV:
		rows, err = readCSV(payload)
	default:
		err = oops.Code("IMPORT_UNSUPPORTED_FORMAT").
			With("format", string(format)).
			Errorf("unsupported format %q: only json and csv are supported", format)
	}
	if err != nil {
		ImportFailures.WithLabelValues(string(format)).Inc()
		return Summary{}, err
	}

	run := &importRun{
		Importer: im,
		userID:   userID,
		format:   format,
		cats:     make(map[string]int),
	}
	if format == FormatJSON {
		for i, v := range records {
			rec, ok := recordFromJSON(i+1, v)
			if !ok {
				run.skip(ctx, i+1, "not an object")
				continue
			}
			if err := run.add(ctx, rec); err != nil {
				return run.summary, err
			}
		}
	} else {
		for i, fields := range rows {
			rec, ok := recordFromCSV(i+1, fields)
			if !ok {
				run.skip(ctx, i+1, "wrong number of fields")
				continue
			}
			if err := run.add(ctx, rec); err != nil {
				return run.summary, err
			}
		}
	}

	im.logger.InfoContext(ctx, "import finished",
		"user_id", userID.String(),
		"format", string(format),
		"imported", run.summary.Imported,
		"skipped", run.summary.Skipped)
	return run.summary, nil
}

// importRun holds the state of one Import call.
type importRun struct {
	*Importer
	userID  ulid.ULID
	format  Format
	cats    map[string]int
	summary Summary
}

func (r *importRun) skip(ctx context.Context, row int, reason string) {
	r.summary.Skipped++
	ImportRecords.WithLabelValues(string(r.format), "skipped").Inc()
	r.logger.DebugContext(ctx, "import record skipped", "row", row, "reason", reason)
}

// add validates rec and stores it. Only storage failures are returned.
func (r *importRun) add(ctx context.Context, rec Record) error {
	if err := ValidateName(rec.Name); err != nil {
		r.skip(ctx, rec.Row, err.Error())
		return nil
	}
	price, err := NormalizePrice(rec.Price)
	if err != nil {
		r.skip(ctx, rec.Row, err.Error())
		return nil
	}
	categoryID, found, err := r.category(ctx, rec.Category)
	if err != nil {
		return err
	}
	if !found {
		r.skip(ctx, rec.Row, "unknown category")
		return nil
	}

	it := &Item{
		ID:         ulid.Make(),
		UserID:     r.userID,
		CategoryID: categoryID,
		Name:       NormalizeName(rec.Name),
		Price:      price,
		Purchased:  rec.Purchased,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.items.Create(ctx, it); err != nil {
		return oops.Code("IMPORT_FAILED").
			With("operation", "create item").
			With("row", rec.Row).
			With("imported", r.summary.Imported).
			Wrap(err)
	}
	r.summary.Imported++
	ImportRecords.WithLabelValues(string(r.format), "imported").Inc()
	return nil
}

// category resolves a category name once per run.
func (r *importRun) category(ctx context.Context, name string) (int, bool, error) {
	if id, ok := r.cats[name]; ok {
		return id, id != 0, nil
	}
	cat, err := r.categories.GetByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		r.cats[name] = 0
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("IMPORT_FAILED").
			With("operation", "get category").
			With("category", name).
			Wrap(err)
	}
	r.cats[name] = cat.ID
	return cat.ID, true, nil
}

// decodeJSONArray decodes a payload that must be a single JSON array.
// Numbers are kept as json.Number so prices keep their literal text.
func decodeJSONArray(payload io.Reader) ([]any, error) {
	dec := json.NewDecoder(payload)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, oops.Code("IMPORT_MALFORMED_PAYLOAD").
			With("format", string(FormatJSON)).
			Wrapf(err, "payload is not valid JSON")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, oops.Code("IMPORT_MALFORMED_PAYLOAD").
			With("format", string(FormatJSON)).
			Errorf("unexpected data after the JSON array")
	}
	records, ok := doc.([]any)
	if !ok {
		return nil, oops.Code("IMPORT_MALFORMED_PAYLOAD").
			With("format", string(FormatJSON)).
			Errorf("payload must be a JSON array of records")
	}
	return records, nil
}

// readCSV checks the header and returns the data rows. A row with broken
// quoting is returned as nil so it is counted as skipped; the reader resumes
// on the next line.
func readCSV(payload io.Reader) ([][]string, error) {
	br := bufio.NewReader(payload)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, oops.Code("IMPORT_EMPTY_INPUT").
			With("format", string(FormatCSV)).
			Errorf("CSV payload is empty")
	}
	if err != nil {
		return nil, oops.Code("IMPORT_INVALID_HEADER").
			With("format", string(FormatCSV)).
			Wrapf(err, "cannot read CSV header")
	}
	if !slices.Equal(header, recordFields) {
		return nil, oops.Code("IMPORT_INVALID_HEADER").
			With("format", string(FormatCSV)).
			With("header", header).
			Errorf("CSV header must be %q", "name,price,category,is_purchased")
	}

	var rows [][]string
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows = append(rows, nil)
			continue
		}
		if err != nil {
			return nil, oops.Code("IMPORT_READ_FAILED").
				With("format", string(FormatCSV)).
				Wrap(err)
		}
		rows = append(rows, fields)
	}
}
