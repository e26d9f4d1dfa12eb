package keeper

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/event/events"
	"github.com/dshills/cursorkeep/internal/host"
	"github.com/dshills/cursorkeep/internal/schedule"
)

// Command IDs.
const (
	CommandToggle     = "cursorkeep.toggle"
	CommandSaveNow    = "cursorkeep.saveNow"
	CommandRestore    = "cursorkeep.restore"
	CommandToggleTips = "cursorkeep.toggleTips"
	CommandClearAll   = "cursorkeep.clearAll"
	CommandShowStatus = "cursorkeep.showStatus"
)

// Command is a zero-argument user command.
type Command struct {
	ID    string
	Title string
	Run   func(ctx context.Context) error
}

func (k *Keeper) registerCommands() {
	k.commands = []Command{
		{CommandToggle, "Toggle cursor tracking", k.Toggle},
		{CommandSaveNow, "Save cursor positions now", k.SaveNow},
		{CommandRestore, "Restore cursor position", k.Restore},
		{CommandToggleTips, "Cycle tip mode", k.ToggleTips},
		{CommandClearAll, "Clear all cursor positions", k.ClearAll},
		{CommandShowStatus, "Show cursorkeep status", k.ShowStatus},
	}
	k.byID = make(map[string]Command, len(k.commands))
	for _, c := range k.commands {
		k.byID[c.ID] = c
	}
}

// Commands returns the commands in registration order.
func (k *Keeper) Commands() []Command {
	out := make([]Command, len(k.commands))
	copy(out, k.commands)
	return out
}

// Execute runs the command registered under id.
func (k *Keeper) Execute(ctx context.Context, id string) error {
	c, ok := k.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	k.logger.Debug("executing %s", id)
	return c.Run(ctx)
}

// Toggle flips the enabled setting and persists it.
func (k *Keeper) Toggle(_ context.Context) error {
	enabled := !k.cfg.Settings().Enabled
	if err := k.setting(config.KeyEnabled, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	k.session.Notify(host.LevelInfo, "Cursor tracking "+state)
	k.logger.Info("tracking %s", state)
	return nil
}

// SaveNow writes the store immediately, even while tracking is disabled.
func (k *Keeper) SaveNow(_ context.Context) error {
	k.mu.Lock()
	if k.disposed {
		k.mu.Unlock()
		return ErrDisposed
	}
	_, err := k.saveLocked(true)
	k.unlock()

	if err != nil {
		return err
	}
	k.session.Notify(host.LevelInfo, "Cursor positions saved")
	return nil
}

// Restore moves the active editor to its stored position.
func (k *Keeper) Restore(_ context.Context) error {
	if !k.cfg.Settings().Enabled {
		return nil
	}
	ed, ok := k.session.ActiveEditor()
	if !ok {
		return nil
	}

	if k.restore(ed) {
		k.session.Notify(host.LevelInfo, "Cursor position restored")
	} else {
		k.session.Notify(host.LevelInfo, "No saved cursor position for this file")
	}
	return nil
}

// ToggleTips advances the tip mode (none, statusbar, 5s, 10s, 1min),
// persists it, and restarts the timers.
func (k *Keeper) ToggleTips(_ context.Context) error {
	next := k.cfg.Settings().TipMode.Next()
	if err := k.setting(config.KeyTipMode, string(next)); err != nil {
		return err
	}

	k.mu.Lock()
	if k.started && !k.disposed {
		k.loop.Restart(schedule.ConfigFrom(k.cfg.Settings()))
	}
	k.mu.Unlock()

	k.session.Notify(host.LevelInfo, "Tip mode: "+string(next))
	return nil
}

// ClearAll drops every stored position and saves the empty store.
func (k *Keeper) ClearAll(_ context.Context) error {
	k.mu.Lock()
	if k.disposed {
		k.mu.Unlock()
		return ErrDisposed
	}
	k.store.Clear()
	res, err := k.saveLocked(false)
	if err == nil {
		k.emit(event.New(events.TopicPositionsCleared, events.PositionsCleared{Path: res.Path}, Source))
	}
	k.unlock()

	if err != nil {
		k.session.Notify(host.LevelError, "Failed to clear cursor positions")
		return err
	}
	k.session.Notify(host.LevelInfo, "All cursor positions cleared")
	k.logger.Info("all positions cleared")
	return nil
}

// ShowStatus shows the one-line status summary.
func (k *Keeper) ShowStatus(_ context.Context) error {
	msg := k.Status().String()
	k.session.Notify(host.LevelInfo, msg)
	k.logger.Info("status: %s", msg)
	return nil
}

// setting changes one configuration value. A value that could not be
// written to the config file still takes effect for this session.
func (k *Keeper) setting(key string, value any) error {
	err := k.cfg.Set(key, value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, config.ErrNoConfigFile):
		k.logger.Debug("%s changed for this session only", key)
		return nil
	case errors.Is(err, config.ErrValidationFailed), errors.Is(err, config.ErrTypeMismatch), errors.Is(err, config.ErrUnknownSetting):
		return err
	default:
		k.session.Notify(host.LevelWarning, fmt.Sprintf("Could not save setting %s", key))
		return nil
	}
}
