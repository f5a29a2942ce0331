// Package solr writes Solr XML update documents.
package solr

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.DocumentWriter = (*Writer)(nil)

const (
	header      = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	indentation = "  "
)

// Writer streams <add><doc>...</doc></add> to an io.Writer.
// The underlying writer is flushed, not closed, by Close.
type Writer struct {
	out     *bufio.Writer
	started bool
	closed  bool
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

func (w *Writer) start() error {
	if w.started {
		return nil
	}
	w.started = true
	_, err := io.WriteString(w.out, header+"<add>\n")
	return err
}

// Write appends one <doc> element.
func (w *Writer) Write(_ context.Context, doc *domain.FieldValues) error {
	if w.closed {
		return fmt.Errorf("solr writer: %w", domain.ErrInvalidInput)
	}
	if err := w.start(); err != nil {
		return err
	}

	w.out.WriteString(indentation + "<doc>\n")
	for _, fv := range doc.All() {
		w.out.WriteString(indentation + indentation + `<field name="`)
		if err := xml.EscapeText(w.out, []byte(fv.Field)); err != nil {
			return err
		}
		w.out.WriteString(`">`)
		if err := xml.EscapeText(w.out, []byte(fv.Value)); err != nil {
			return err
		}
		w.out.WriteString("</field>\n")
	}
	_, err := w.out.WriteString(indentation + "</doc>\n")
	return err
}

// Close terminates the <add> element and flushes. An empty run still
// produces a well-formed document.
func (w *Writer) Close(context.Context) error {
	if w.closed {
		return nil
	}
	if err := w.start(); err != nil {
		return err
	}
	w.closed = true
	if _, err := w.out.WriteString("</add>\n"); err != nil {
		return err
	}
	return w.out.Flush()
}
