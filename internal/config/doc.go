// Package config manages cursorkeep settings.
//
// Settings are resolved from four layers, lowest precedence first:
//
//  1. Built-in defaults (DefaultSettings).
//  2. The "cursorkeep" table of a TOML or YAML config file.
//  3. CURSORKEEP_* environment variables.
//  4. Values changed at runtime with Config.Set.
//
// Set validates the value, writes it back to the config file, and notifies
// observers. When a file watch is active, external edits to the file are
// reloaded and observers receive a single reload change listing the keys
// whose effective value moved.
package config
