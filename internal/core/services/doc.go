// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - FieldMapper: runs the configured converters over one record
//   - Exporter: maps a record stream on a worker pool and writes it in order
//   - StatsCollector: counts the values a mapping produces per field
//   - SettingsService: reads and writes ExportSettings
//
// Services never import adapters; they receive them through the ports.
package services
