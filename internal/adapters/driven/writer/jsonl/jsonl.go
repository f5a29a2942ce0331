// Package jsonl writes one JSON object per record.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.DocumentWriter = (*Writer)(nil)

// Writer emits newline-delimited JSON. Fields keep the order of their first
// occurrence; a field with several values becomes an array.
type Writer struct {
	out *bufio.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// Write appends one line.
func (w *Writer) Write(_ context.Context, doc *domain.FieldValues) error {
	line, err := Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := w.out.Write(line); err != nil {
		return err
	}
	return w.out.WriteByte('\n')
}

// Close flushes buffered lines.
func (w *Writer) Close(context.Context) error {
	return w.out.Flush()
}

// Marshal renders doc as a single JSON object.
func Marshal(doc *domain.FieldValues) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range doc.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if values := doc.Get(field); len(values) == 1 {
			value, err = json.Marshal(values[0])
		} else {
			value, err = json.Marshal(values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
