// Package schedule runs cursorkeep's periodic work.
//
// A Loop owns two independent tickers: the save tick, which flushes the
// position store, and the tip tick, which rotates usage tips. Ticks are
// fire-and-forget. The loop does not correct drift, back off after failures,
// or prevent a slow callback from overlapping the next tick; callers that
// share state with the callbacks serialize themselves.
//
// Delay is a restartable one-shot timer used to undo transient UI changes,
// such as restoring the status item text after a tip was shown.
package schedule
