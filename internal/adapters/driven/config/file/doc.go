// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML application settings
//   - LoadMapping: YAML mapping documents decoded into converter specs
package file
