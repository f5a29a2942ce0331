// Package elasticsearch indexes mapped records through the bulk API.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/writer/jsonl"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.DocumentWriter = (*Writer)(nil)

// DefaultBatchSize is the number of documents sent per bulk request.
const DefaultBatchSize = 500

// IDField is the output field used as document id.
const IDField = "id"

// ErrBulkFailed indicates that Elasticsearch rejected one or more documents.
var ErrBulkFailed = errors.New("bulk request failed")

// Config configures a Writer.
type Config struct {
	Addresses []string
	Index     string
	BatchSize int
}

// Writer buffers documents and sends them in bulk requests.
type Writer struct {
	client    *elasticsearch.Client
	index     string
	batchSize int

	body    bytes.Buffer
	pending int
}

// NewWriter creates a Writer. No request is made until the first batch is full.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("elasticsearch index: %w", domain.ErrInvalidConfig)
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Writer{client: client, index: cfg.Index, batchSize: batch}, nil
}

type indexAction struct {
	Index struct {
		ID string `json:"_id,omitempty"`
	} `json:"index"`
}

// Write queues doc and flushes when the batch is full.
func (w *Writer) Write(ctx context.Context, doc *domain.FieldValues) error {
	var action indexAction
	action.Index.ID, _ = doc.First(IDField)
	meta, err := json.Marshal(action)
	if err != nil {
		return err
	}
	source, err := jsonl.Marshal(doc)
	if err != nil {
		return err
	}

	w.body.Write(meta)
	w.body.WriteByte('\n')
	w.body.Write(source)
	w.body.WriteByte('\n')
	w.pending++

	if w.pending >= w.batchSize {
		return w.flush(ctx)
	}
	return nil
}

// Close sends the remaining documents.
func (w *Writer) Close(ctx context.Context) error {
	return w.flush(ctx)
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (w *Writer) flush(ctx context.Context) error {
	if w.pending == 0 {
		return nil
	}
	count := w.pending
	req := esapi.BulkRequest{
		Index: w.index,
		Body:  bytes.NewReader(w.body.Bytes()),
	}
	res, err := req.Do(ctx, w.client)
	w.body.Reset()
	w.pending = 0
	if err != nil {
		return fmt.Errorf("failed to send bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrBulkFailed, res.String())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if !parsed.Errors {
		logger.Debug("indexed %d documents into %s", count, w.index)
		return nil
	}

	var reasons []string
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Status >= 300 {
				reasons = append(reasons, fmt.Sprintf("%s: %s %s", result.ID, result.Error.Type, result.Error.Reason))
			}
		}
	}
	return fmt.Errorf("%w: %d of %d documents rejected: %s",
		ErrBulkFailed, len(reasons), count, strings.Join(reasons, "; "))
}
