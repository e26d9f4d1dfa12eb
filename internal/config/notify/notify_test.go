package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "set", ChangeSet.String())
	assert.Equal(t, "reload", ChangeReload.String())
	assert.Equal(t, "unknown", ChangeType(9).String())
}

func TestNotifier_DeliversInOrder(t *testing.T) {
	n := New()
	var got []string

	n.Subscribe(func(c Change) { got = append(got, "first:"+c.Path) })
	n.Subscribe(func(c Change) { got = append(got, "second:"+c.Path) })

	n.NotifySet("tipMode", "none", "5s", "set")

	assert.Equal(t, []string{"first:tipMode", "second:tipMode"}, got)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := New()
	calls := 0
	sub := n.Subscribe(func(Change) { calls++ })

	sub.Unsubscribe()
	sub.Unsubscribe()
	n.NotifyReload(nil, "file")

	assert.Zero(t, calls)
	assert.Zero(t, n.Len())
}

func TestNotifier_UnsubscribeInsideObserver(t *testing.T) {
	n := New()
	calls := 0
	var sub *Subscription
	sub = n.Subscribe(func(Change) {
		calls++
		sub.Unsubscribe()
	})

	n.NotifyReload([]string{"enabled"}, "file")
	n.NotifyReload([]string{"enabled"}, "file")

	assert.Equal(t, 1, calls)
}

func TestNotifier_Reload(t *testing.T) {
	n := New()
	var got Change
	n.Subscribe(func(c Change) { got = c })

	n.NotifyReload([]string{"saveInterval", "tipMode"}, "file")

	assert.Equal(t, ChangeReload, got.Type)
	assert.Empty(t, got.Path)
	assert.Equal(t, []string{"saveInterval", "tipMode"}, got.Keys)
	assert.Equal(t, "file", got.Source)
}

func TestNotifier_Close(t *testing.T) {
	n := New()
	calls := 0
	n.Subscribe(func(Change) { calls++ })

	n.Close()
	n.NotifySet("enabled", true, false, "set")

	assert.Zero(t, calls)
}
