package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cursorkeep/internal/event/topic"
)

func TestNew(t *testing.T) {
	before := time.Now()
	ev := New(topic.Topic("positions.saved"), 42, "keeper")

	assert.Equal(t, topic.Topic("positions.saved"), ev.EventTopic())
	assert.Equal(t, 42, ev.Payload)
	assert.Equal(t, "keeper", ev.EventMetadata().Source)
	assert.False(t, ev.Metadata.Timestamp.Before(before))

	_, err := uuid.Parse(ev.Metadata.ID)
	require.NoError(t, err)
}

func TestNew_UniqueIDs(t *testing.T) {
	a := New(topic.Topic("a"), struct{}{}, "test")
	b := New(topic.Topic("a"), struct{}{}, "test")

	assert.NotEqual(t, a.Metadata.ID, b.Metadata.ID)
}
