package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTimer_StartStop_AccumulatesCountAndTotal(t *testing.T) {
	var timer EventTimer
	timer.Start()
	timer.Stop()
	timer.Start()
	timer.Stop()
	assert.Equal(t, int64(2), timer.Count())
	assert.False(t, timer.Running())
}

func TestEventTimer_Start_PanicsIfAlreadyRunning(t *testing.T) {
	var timer EventTimer
	timer.Start()
	assert.Panics(t, func() { timer.Start() })
}

func TestEventTimer_Stop_WithoutStartIsANoOp(t *testing.T) {
	var timer EventTimer
	timer.Stop()
	assert.Equal(t, int64(0), timer.Count())
}

func TestEventTimer_Time_StopsTimerEvenWhenFnReturnsAnError(t *testing.T) {
	var timer EventTimer
	sentinel := errors.New("boom")
	err := timer.Time(func() error { return sentinel })
	assert.Equal(t, sentinel, err)
	assert.False(t, timer.Running())
	assert.Equal(t, int64(1), timer.Count())
}
