package app

import (
	"quartz/devices/ds3231"
	"quartz/devices/lm75b"
	"quartz/display"
	"quartz/hal"
)

// Bus addresses of the three targets.
const (
	panelAddr  = display.DefaultAddr
	rtcAddr    = ds3231.DefaultAddress
	sensorAddr = lm75b.BaseAddress
)

// Task priorities. The bus completion tasks outrank everything that
// can touch the engine, the watchdog sits just below them so it can
// still preempt a submitter, and the frame task composes at the
// bottom where a stale read costs one frame at most.
const (
	prioFrame     hal.Priority = 1
	prioTelemetry hal.Priority = 1
	prioInput     hal.Priority = 2
	prioWall      hal.Priority = 2
	prioSensor    hal.Priority = 2
	prioChrono    hal.Priority = 3
	prioWatchdog  hal.Priority = 4
	prioBus       hal.Priority = 5
)

// Timer periods, milliseconds.
const (
	periodFrameMS     = 50
	periodInputMS     = 20
	periodWallMS      = 1000
	periodSensorMS    = 100
	periodStopwatchMS = 100
	periodCountdownMS = 1000
	periodWatchdogMS  = 250
	periodTelemetryMS = 1000
)

const (
	// busAttempts bounds retries of one transaction.
	busAttempts = 3
	// wdStaleChecks is how many consecutive watchdog periods without
	// engine progress force a teardown.
	wdStaleChecks = 2
	// rtcResyncTicks is the wall-tick cadence of DS3231 resync.
	rtcResyncTicks = 300
)
