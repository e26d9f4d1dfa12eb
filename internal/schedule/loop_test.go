package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/cursorkeep/internal/config"
)

func TestTipInterval(t *testing.T) {
	tests := []struct {
		mode config.TipMode
		want time.Duration
	}{
		{config.TipNone, 0},
		{config.TipStatusBar, 10 * time.Second},
		{config.Tip5s, 5 * time.Second},
		{config.Tip10s, 10 * time.Second},
		{config.Tip1min, time.Minute},
		{config.TipMode("weekly"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, TipInterval(tt.mode))
		})
	}
}

func TestConfigFrom(t *testing.T) {
	s := config.DefaultSettings()
	s.SaveInterval = 3
	s.TipMode = config.Tip5s

	cfg := ConfigFrom(s)
	assert.Equal(t, 3*time.Second, cfg.SaveInterval)
	assert.Equal(t, 5*time.Second, cfg.TipInterval)
}

func TestConfigFrom_ClampsSaveInterval(t *testing.T) {
	s := config.DefaultSettings()
	s.SaveInterval = 10_000_000_000

	cfg := ConfigFrom(s)
	assert.Equal(t, config.MaxSaveInterval*time.Second, cfg.SaveInterval)
	assert.Positive(t, cfg.SaveInterval)
}

func TestLoop_Ticks(t *testing.T) {
	var saves, tips atomic.Int32
	l := NewLoop(func() { saves.Add(1) }, func() { tips.Add(1) })
	l.Start(Config{SaveInterval: 10 * time.Millisecond, TipInterval: 15 * time.Millisecond})
	defer l.Stop()

	assert.Eventually(t, func() bool {
		return saves.Load() >= 3 && tips.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, l.Running())
}

func TestLoop_ZeroIntervalDisablesTicker(t *testing.T) {
	var saves, tips atomic.Int32
	l := NewLoop(func() { saves.Add(1) }, func() { tips.Add(1) })
	l.Start(Config{SaveInterval: 5 * time.Millisecond})
	defer l.Stop()

	assert.Eventually(t, func() bool { return saves.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, tips.Load())
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	var saves atomic.Int32
	l := NewLoop(func() { saves.Add(1) }, nil)
	l.Start(Config{SaveInterval: 5 * time.Millisecond})

	assert.Eventually(t, func() bool { return saves.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	l.Stop()
	l.Stop()
	assert.False(t, l.Running())

	// allow an in-flight callback to finish
	time.Sleep(20 * time.Millisecond)
	n := saves.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, saves.Load())
}

func TestLoop_Restart(t *testing.T) {
	var saves, tips atomic.Int32
	l := NewLoop(func() { saves.Add(1) }, func() { tips.Add(1) })
	l.Start(Config{SaveInterval: time.Hour})
	defer l.Stop()

	l.Restart(Config{SaveInterval: time.Hour, TipInterval: 5 * time.Millisecond})
	assert.Equal(t, 5*time.Millisecond, l.Config().TipInterval)

	assert.Eventually(t, func() bool { return tips.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, saves.Load())
}

func TestLoop_StartTwiceKeepsConfig(t *testing.T) {
	l := NewLoop(nil, nil)
	l.Start(Config{SaveInterval: time.Hour})
	l.Start(Config{SaveInterval: time.Minute})
	defer l.Stop()

	assert.Equal(t, time.Hour, l.Config().SaveInterval)
}
