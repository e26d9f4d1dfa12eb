package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader reads settings from environment variables.
type EnvLoader struct {
	mapping map[string]string // env var -> setting key
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader for the given env var -> key mapping.
func NewEnvLoader(mapping map[string]string) *EnvLoader {
	return &EnvLoader{mapping: mapping, lookup: os.LookupEnv}
}

// WithLookup replaces os.LookupEnv, mainly for tests.
func (l *EnvLoader) WithLookup(lookup func(string) (string, bool)) *EnvLoader {
	l.lookup = lookup
	return l
}

// Load returns the mapped variables that are set, with values parsed as
// bool or integer when they look like one. Empty values count as set.
func (l *EnvLoader) Load() map[string]any {
	out := make(map[string]any)
	for env, key := range l.mapping {
		if val, ok := l.lookup(env); ok {
			out[key] = parseValue(val)
		}
	}
	return out
}

func parseValue(s string) any {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	return s
}
