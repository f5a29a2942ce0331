// Package domain defines the core entities of the Cumulus export pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ConverterSpec: One configured field mapping (source, destination, policy)
//   - FieldValue: An immutable (field, value) pair destined for the search index
//   - FieldValues: The ordered, multi-valued output for one source record
//   - StaticFields: Record-independent fields appended to every output
//   - RunSummary: The outcome of one export batch
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
