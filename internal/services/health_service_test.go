package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessBeforeAndAfterFirstSnapshot(t *testing.T) {
	svc := newTestService(t, fixtureDataDir(t), nil)
	health := NewHealthService(svc)

	status, ready := health.Readiness()
	assert.False(t, ready)
	assert.Equal(t, "no_snapshot", status.Status)

	snap, err := svc.Reload(context.Background())
	require.NoError(t, err)

	status, ready = health.Readiness()
	assert.True(t, ready)
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, snap.ID, status.SnapshotID)
}

func TestLivenessAlwaysOK(t *testing.T) {
	health := NewHealthService(newTestService(t, fixtureDataDir(t), nil))
	assert.Equal(t, "ok", health.Liveness().Status)
}
