package driven

// ConfigStore provides flattened key access to application settings.
// Keys use dot notation for nested tables, e.g. "export.workers".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent or not a string.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent or not a number.
	GetInt(key string) int

	// GetFloat retrieves a number, or 0 if absent or not a number.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false if absent or not a bool.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice, or nil if absent.
	GetStringSlice(key string) []string

	// Set stores a value in memory. Call Save to persist it.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
