// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	editor.selection.changed
//	editor.active.changed
//	positions.saved
//
// # Wildcards
//
// Two wildcard patterns are supported:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	editor.*.changed     matches editor.selection.changed, editor.active.changed
//	positions.*          matches positions.saved, positions.cleared
//	**                   matches everything
package topic
