// Package keeper connects the position store to an editor session.
//
// A Keeper is built explicitly from a host.Session, an event bus, the
// configuration and a position store, then started. Once started it
//
//   - records the selection of every editor that publishes
//     editor.selection.changed while tracking is enabled,
//   - restores the newest stored position when editor.active.changed
//     focuses a file, if that line still exists,
//   - saves the store on a timer and rotates usage tips,
//   - applies configuration changes (storage location, cap, timers,
//     status item) as they arrive on config.changed.
//
// The user-facing commands (toggle, saveNow, restore, toggleTips, clearAll,
// showStatus) are exposed through Commands and Execute so that any command
// surface (a key binding, a Lua script, a CLI) can dispatch them by ID.
//
// Bus handlers and timer callbacks run on different goroutines; the Keeper
// serializes them with a single mutex. It never holds that mutex while
// calling Editor methods or publishing events, so a host may publish
// synchronously from SetSelection.
package keeper
