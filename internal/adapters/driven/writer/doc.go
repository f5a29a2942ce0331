// Package writer groups the DocumentWriter adapters.
//
// Each sub-package serialises mapped records for one search engine:
//
//   - solr: Solr XML update documents
//   - jsonl: newline-delimited JSON objects
//   - elasticsearch: bulk indexing through the Elasticsearch API
//
// Writers are used by a single goroutine; the exporter calls Write in
// record order and Close once at the end of a run.
package writer
