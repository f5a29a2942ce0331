// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Record: One catalog record as seen by the converters
//   - RecordSource: Iterates records from a record store
//   - Converter: One configured field conversion
//   - DocumentWriter: Serialises FieldValues for the search engine
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - WebClient: HTTP access for url verification and external services.
//     Without it, mappings using those converters fail to build.
//   - RunStore: Journals export runs and skipped records.
//   - ExportMetrics: Observes run progress.
//   - ConfigStore: Flattened key access to the settings file.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
