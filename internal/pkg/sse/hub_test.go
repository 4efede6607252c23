package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub(2)

	events, cleanup := hub.Subscribe("run-1")
	other, cleanupOther := hub.Subscribe("run-2")
	defer cleanupOther()

	hub.Publish("run-1", "employee_processed", map[string]string{"employee_id": "e-1"})

	require.Len(t, events, 1)
	got := <-events
	assert.Equal(t, "employee_processed", got.Name)
	assert.Empty(t, other)

	// A full buffer drops instead of blocking.
	hub.Publish("run-1", "a", nil)
	hub.Publish("run-1", "b", nil)
	hub.Publish("run-1", "c", nil)
	assert.Len(t, events, 2)

	cleanup()
	cleanup()

	for range events {
	}
	_, open := <-events
	assert.False(t, open)

	// publishing to a topic without subscribers is a no-op
	assert.NotPanics(t, func() { hub.Publish("run-1", "d", nil) })
}
