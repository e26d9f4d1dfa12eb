package script

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cursorkeep/internal/keeper"
	"github.com/dshills/cursorkeep/internal/position"
)

// ModuleName is the require name of the cursorkeep module.
const ModuleName = "ks.cursorkeep"

// Backend is what the Lua module needs from a running keeper.
type Backend interface {
	Store() *position.Store
	Commands() []keeper.Command
	Execute(ctx context.Context, id string) error
}

// Module implements ks.cursorkeep.
type Module struct {
	backend Backend
	ctx     context.Context
}

// NewModule creates the module. ctx is passed to commands started by run.
func NewModule(ctx context.Context, backend Backend) *Module {
	return &Module{backend: backend, ctx: ctx}
}

// Install preloads the module and sets the ks.cursorkeep global.
func (m *Module) Install(s *State) {
	s.Preload(ModuleName, m.loader)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	L := s.L
	ks, ok := L.GetGlobal("ks").(*lua.LTable)
	if !ok {
		ks = L.NewTable()
		L.SetGlobal("ks", ks)
	}
	L.SetField(ks, "cursorkeep", m.table(L))
}

func (m *Module) loader(L *lua.LState) int {
	L.Push(m.table(L))
	return 1
}

func (m *Module) table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"lookup":   m.lookup,
		"history":  m.history,
		"run":      m.run,
		"commands": m.commands,
		"count":    m.count,
	})
}

// lookup(path) -> line, character | nil
func (m *Module) lookup(L *lua.LState) int {
	path := L.CheckString(1)
	rec, ok := m.backend.Store().Lookup(path)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(rec.Line))
	L.Push(lua.LNumber(rec.Character))
	return 2
}

// history(path) -> {{line=, character=, timestamp=}, ...}, newest first
func (m *Module) history(L *lua.LState) int {
	path := L.CheckString(1)
	recs := m.backend.Store().History(path)

	tbl := L.CreateTable(len(recs), 0)
	for _, rec := range recs {
		entry := L.CreateTable(0, 3)
		entry.RawSetString("line", lua.LNumber(rec.Line))
		entry.RawSetString("character", lua.LNumber(rec.Character))
		entry.RawSetString("timestamp", lua.LNumber(rec.Timestamp))
		tbl.Append(entry)
	}
	L.Push(tbl)
	return 1
}

// run(id) -> true | nil, message
func (m *Module) run(L *lua.LState) int {
	id := L.CheckString(1)
	if err := m.backend.Execute(m.ctx, id); err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// commands() -> {id, ...}
func (m *Module) commands(L *lua.LState) int {
	cmds := m.backend.Commands()
	tbl := L.CreateTable(len(cmds), 0)
	for _, c := range cmds {
		tbl.Append(lua.LString(c.ID))
	}
	L.Push(tbl)
	return 1
}

// count() -> number of tracked files
func (m *Module) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.backend.Store().Len()))
	return 1
}
