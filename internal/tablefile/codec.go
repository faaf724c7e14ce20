package tablefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// Format marks a file as a salesdb table file.
	Format = "salesdb.table"

	// Version is the only layout version this package writes and accepts.
	Version = 1
)

// ErrMalformed is wrapped by every Decode error caused by file content.
var ErrMalformed = errors.New("malformed table file")

// envelope is the on-disk document.
type envelope struct {
	Format   string            `json:"format"`
	Version  int               `json:"version"`
	Table    string            `json:"table"`
	Count    int               `json:"count"`
	Checksum string            `json:"checksum"`
	Records  []json.RawMessage `json:"records"`
}

// Encode writes records as a table file named table.
func Encode[T any](w io.Writer, table string, records []T) error {
	raw := make([]json.RawMessage, len(records))
	compact := make([][]byte, len(records))
	for i, rec := range records {
		data, err := marshalRecord(rec)
		if err != nil {
			return fmt.Errorf("encode %s record %d: %w", table, i, err)
		}
		raw[i] = data
		compact[i] = data
	}

	env := envelope{
		Format:   Format,
		Version:  Version,
		Table:    table,
		Count:    len(records),
		Checksum: Checksum(compact),
		Records:  raw,
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}
	return nil
}

// Decode reads a table file and returns its records in file order.
// The file must name table, carry the current format and version, and
// match its own count and checksum. Unknown record fields are rejected.
func Decode[T any](r io.Reader, table string) ([]T, error) {
	var env envelope
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	if env.Format != Format {
		return nil, fmt.Errorf("%w: format %q, expected %q", ErrMalformed, env.Format, Format)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrMalformed, env.Version, Version)
	}
	if env.Table != table {
		return nil, fmt.Errorf("%w: table %q, expected %q", ErrMalformed, env.Table, table)
	}
	if env.Count != len(env.Records) {
		return nil, fmt.Errorf("%w: count %d but %d records", ErrMalformed, env.Count, len(env.Records))
	}

	compact := make([][]byte, len(env.Records))
	records := make([]T, len(env.Records))
	for i, raw := range env.Records {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
		compact[i] = buf.Bytes()

		rd := json.NewDecoder(bytes.NewReader(raw))
		rd.DisallowUnknownFields()
		if err := rd.Decode(&records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
	}

	if sum := Checksum(compact); sum != env.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrMalformed)
	}

	return records, nil
}

// marshalRecord returns the compact JSON of v without HTML escaping.
func marshalRecord(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
