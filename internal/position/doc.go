// Package position implements the cursor position store.
//
// The store maps an absolute file path to a short history of cursor
// positions, newest first, bounded by a per-file cap. It is mirrored to a
// single human-readable JSON file that is rewritten in full on every save:
//
//	{
//	  "/src/main.go": [
//	    {"line": 41, "character": 8, "timestamp": 1760000000000}
//	  ]
//	}
//
// Load also accepts the older single-record layout, where each path maps to
// one record object instead of an array. Unreadable or corrupt files reset
// the store to empty; they are logged, never fatal.
package position
