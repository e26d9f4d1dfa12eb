package keeper

import (
	"context"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
	"github.com/dshills/cursorkeep/internal/position"
	"github.com/dshills/cursorkeep/internal/schedule"
)

// active reports whether host events should be acted on.
func (k *Keeper) active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.started && !k.disposed
}

func (k *Keeper) handleSelectionChanged(_ context.Context, ev any) error {
	p, ok := event.Payload[events.SelectionChanged](ev)
	if !ok || p.Editor == nil {
		return nil
	}
	if !k.active() || !k.cfg.Settings().Enabled {
		return nil
	}
	k.record(p.Editor)
	return nil
}

// record stores the editor's current selection. Editors without a file
// are ignored.
func (k *Keeper) record(ed host.Editor) {
	path := ed.Path()
	if path == "" {
		return
	}
	pos := ed.Selection()
	if err := k.store.Update(path, position.NewRecord(pos, k.now())); err != nil {
		k.logger.Warn("not recording %q at %s: %v", path, pos, err)
		return
	}
	k.logger.Debug("recorded %s at %s", path, pos)
}

func (k *Keeper) handleActiveEditorChanged(_ context.Context, ev any) error {
	p, ok := event.Payload[events.ActiveEditorChanged](ev)
	if !ok || p.Editor == nil {
		return nil
	}
	if !k.active() || !k.cfg.Settings().Enabled {
		return nil
	}
	k.restore(p.Editor)
	return nil
}

// restore moves the editor to its newest stored position. It does nothing
// when the file has no record or the recorded line no longer exists.
func (k *Keeper) restore(ed host.Editor) bool {
	path := ed.Path()
	if path == "" {
		return false
	}
	rec, ok := k.store.Lookup(path)
	if !ok {
		return false
	}
	pos := rec.Position()
	if pos.Line >= ed.LineCount() {
		k.logger.Debug("not restoring %s: line %d beyond %d lines", path, pos.Line, ed.LineCount())
		return false
	}

	ed.SetSelection(pos)
	ed.Reveal(pos)
	k.logger.Info("restored %s to %s", path, pos)
	return true
}

// handleConfigChanged re-resolves the storage file, reloads it, and applies
// the new cap, status item and timers. Failures are logged only.
func (k *Keeper) handleConfigChanged(_ context.Context, _ any) error {
	k.mu.Lock()
	defer k.unlock()

	if !k.started || k.disposed {
		return nil
	}

	s := k.cfg.Settings()

	// Flush first so positions recorded since the last tick survive the
	// reload, even when the storage file moves.
	if _, err := k.saveLocked(false); err != nil {
		k.logger.Warn("saving before configuration change: %v", err)
	}
	if err := k.openStorageLocked(s); err != nil {
		k.logger.Error("failed to apply configuration: %v", err)
		return nil
	}
	k.store.SetCap(s.MaxFilesPerDocument)
	k.applyStatusItemLocked(s.EnableStatusBar)
	k.loop.Restart(schedule.ConfigFrom(s))

	k.session.Notify(host.LevelInfo, "cursorkeep configuration updated")
	k.logger.Info("configuration updated")
	return nil
}

var (
	statusBarTips = []string{
		"cursorkeep: autosaving",
		"cursorkeep: positions protected",
		"cursorkeep: tracking",
		"cursorkeep: keeping your place",
	}
	messageTips = []string{
		"Cursor positions are saved automatically",
		"Your cursor positions are safe",
		"cursorkeep is working in the background",
		"Reopen a file to jump back to where you left off",
	}
)

func (k *Keeper) onTipTick() {
	k.mu.Lock()
	defer k.unlock()

	if !k.started || k.disposed {
		return
	}

	switch k.cfg.Settings().TipMode {
	case config.TipStatusBar:
		if !k.statusShown {
			return
		}
		k.status.SetText(k.pick(statusBarTips))
		k.tipReset.Schedule(k.resetStatusText)
	case config.Tip5s, config.Tip10s, config.Tip1min:
		k.session.StatusMessage(k.pick(messageTips), TipDuration)
	}
}

func (k *Keeper) resetStatusText() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.statusShown && !k.disposed {
		k.status.SetText(IdleText)
	}
}

func (k *Keeper) pick(msgs []string) string {
	return msgs[k.intn(len(msgs))]
}
