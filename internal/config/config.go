// Package config holds the server-wide settings an editor supplies via
// workspace/didChangeConfiguration, covering background indexing,
// diagnostic reporting, the target-reference lens, and the external
// formatter binary. Grounded on the functional-options construction style
// used throughout this codebase (store.New, analyzer components) rather
// than on any one config type from the retrieval pack — the closest
// analogue is a CLI-flags/profile store with no real shape in common.
package config

// Config is the mutable, server-wide settings object. Nil or missing keys
// in an incoming didChangeConfiguration payload leave the corresponding
// field at its current value, never reset a set field to its zero value.
type Config struct {
	BackgroundIndexing bool
	ErrorReporting     bool
	TargetLens         bool
	ParallelIndexing   bool
	WorkspaceCompletion bool
	BinaryPath         string
	Experimental       map[string]any
}

// Default returns the configuration an editor gets before its first
// didChangeConfiguration notification.
func Default() *Config {
	return &Config{
		BackgroundIndexing:  true,
		ErrorReporting:      true,
		TargetLens:          true,
		ParallelIndexing:    true,
		WorkspaceCompletion: true,
	}
}

// Option mutates a Config in place, the same functional-options shape the
// rest of this codebase builds with.
type Option func(*Config)

func WithBackgroundIndexing(v bool) Option { return func(c *Config) { c.BackgroundIndexing = v } }
func WithErrorReporting(v bool) Option     { return func(c *Config) { c.ErrorReporting = v } }
func WithTargetLens(v bool) Option         { return func(c *Config) { c.TargetLens = v } }
func WithParallelIndexing(v bool) Option   { return func(c *Config) { c.ParallelIndexing = v } }
func WithWorkspaceCompletion(v bool) Option {
	return func(c *Config) { c.WorkspaceCompletion = v }
}
func WithBinaryPath(v string) Option { return func(c *Config) { c.BinaryPath = v } }

// ApplyJSON merges a raw settings payload (as decoded from JSON: a
// map[string]any, typically nested under a "gn" key) into c, leaving any
// key the payload omits untouched.
func ApplyJSON(c *Config, raw map[string]any) {
	if v, ok := raw["backgroundIndexing"].(bool); ok {
		c.BackgroundIndexing = v
	}
	if v, ok := raw["errorReporting"].(bool); ok {
		c.ErrorReporting = v
	}
	if v, ok := raw["targetLens"].(bool); ok {
		c.TargetLens = v
	}
	if v, ok := raw["parallelIndexing"].(bool); ok {
		c.ParallelIndexing = v
	}
	if v, ok := raw["workspaceCompletion"].(bool); ok {
		c.WorkspaceCompletion = v
	}
	if v, ok := raw["binaryPath"].(string); ok {
		c.BinaryPath = v
	}
	if v, ok := raw["experimental"].(map[string]any); ok {
		c.Experimental = v
	}
}
