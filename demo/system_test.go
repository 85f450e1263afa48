package demo

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
	"github.com/sydevs-sim/sydevs-sim/systems"
)

func runDemo(t *testing.T, seed int64, totalDt quantity.Duration, meanInterval quantity.Duration) *System {
	t.Helper()
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&out)

	var sys *System
	sim := systems.NewTotalDurationSimulation(totalDt, seed, &out, log, func(ctx *systems.NodeContext) systems.SystemNode {
		sys = NewSystem("system", ctx, meanInterval)
		return sys
	})
	sim.ProcessRemainingEvents()
	return sys
}

func TestSystem_ProcessRemainingEvents_SinkReceivesEveryEmittedArrival(t *testing.T) {
	sys := runDemo(t, 1, quantity.Seconds(60), quantity.Milliseconds(500))
	assert.Equal(t, sys.Source.EmittedCount(), sys.Sink.ReceivedCount())
	assert.Greater(t, sys.Sink.ReceivedCount(), int64(0))
}

func TestSystem_ProcessRemainingEvents_IsDeterministicForAFixedSeed(t *testing.T) {
	a := runDemo(t, 42, quantity.Seconds(30), quantity.Milliseconds(200))
	b := runDemo(t, 42, quantity.Seconds(30), quantity.Milliseconds(200))
	assert.Equal(t, a.Source.EmittedCount(), b.Source.EmittedCount())
	assert.Equal(t, a.Sink.ReceivedCount(), b.Sink.ReceivedCount())
}
