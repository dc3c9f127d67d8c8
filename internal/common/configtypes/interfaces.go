package configtypes

// ConfigManager provides access to the loaded configuration.
// The returned pointer is read-only; callers must not modify it.
type ConfigManager interface {
	GetConfig() *Config
}
