package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("trends", "last fetch ok")

	status := h.Snapshot()["trends"]
	assert.True(t, status.Healthy)
	assert.Equal(t, "last fetch ok", status.Message)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
	assert.WithinDuration(t, time.Now(), status.LastSuccess, time.Second)
}

func TestHealth_SetUnhealthy(t *testing.T) {
	h := NewHealth()

	h.SetUnhealthy("feed", assert.AnError)

	status := h.Snapshot()["feed"]
	assert.False(t, status.Healthy)
	assert.Equal(t, assert.AnError.Error(), status.Message)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
}

func TestHealth_RecoveryKeepsLastSuccess(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("feed", "ok")
	first := h.Snapshot()["feed"].LastSuccess

	h.SetUnhealthy("feed", assert.AnError)
	assert.Equal(t, first, h.Snapshot()["feed"].LastSuccess)
}

func TestHealth_Overall(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("trends", "ok")
		h.SetHealthy("feed", "ok")

		assert.True(t, h.Overall())
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("trends", "ok")
		h.SetUnhealthy("feed", assert.AnError)

		assert.False(t, h.Overall())
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHealth()
		assert.True(t, h.Overall())
	})
}
