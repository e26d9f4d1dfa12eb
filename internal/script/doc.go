// Package script exposes cursorkeep to Lua.
//
// A State is a sandboxed gopher-lua interpreter: only the base, table,
// string and math libraries are opened, file loading functions are removed,
// and require only resolves preloaded ks.* modules. The ks.cursorkeep module
// is available both as require("ks.cursorkeep") and as the global
// ks.cursorkeep:
//
//	local ck = require("ks.cursorkeep")
//	local line, char = ck.lookup("/src/main.go")
//	for _, rec in ipairs(ck.history("/src/main.go")) do
//	  print(rec.line, rec.character, rec.timestamp)
//	end
//	ck.run("cursorkeep.saveNow")
//	print(ck.count(), #ck.commands())
//
// Positions are zero-based, as stored.
//
// gopher-lua states are not goroutine-safe; State serializes every call.
package script
