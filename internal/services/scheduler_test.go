package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerDisabledWithoutCron(t *testing.T) {
	sched := NewRefreshScheduler("", nil, nil)
	assert.NoError(t, sched.Start())
	sched.Stop()
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	svc := newTestService(t, fixtureDataDir(t), nil)
	sched := NewRefreshScheduler("not a cron", svc, nil)
	assert.Error(t, sched.Start())
}

func TestSchedulerStartsWithValidExpression(t *testing.T) {
	svc := newTestService(t, fixtureDataDir(t), nil)
	sched := NewRefreshScheduler("0 3 * * *", svc, nil)
	assert.NoError(t, sched.Start())
	sched.Stop()
}
