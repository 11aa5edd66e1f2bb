package app

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyterm"

	"quartz/bus"
	"quartz/display"
	"quartz/hal"
	"quartz/internal/buildinfo"
	"quartz/kernel"
)

const faultDrainSpins = 1 << 16

// installFaultConsole points the kernel's fault sink at the panel.
//
// The console runs once the scheduler is declared dead, so it may do
// what running tasks never can: drain the bus by polling and push a
// final frame through the retired blocking adapter.
func installFaultConsole(h hal.HAL, eng *bus.Engine, pipe *display.Pipeline, blk *bus.Blocking) {
	kernel.SetFaultHandler(func(info kernel.FaultInfo) {
		log := h.Logger()
		log.WriteLineString("fault: " + info.Code.String())
		if info.Detail != "" {
			log.WriteLineString("fault: " + info.Detail)
		}

		// Give a transfer in flight a bounded chance to terminate.
		for i := 0; i < faultDrainSpins && eng.State() != bus.Idle; i++ {
			h.Bus().Poll()
			eng.Advance()
		}

		fb := pipe.Composing()
		fb.Clear()
		term := tinyterm.NewTerminal(fb)
		term.Configure(&tinyterm.Config{
			Font:              &tinyfont.Org01,
			FontHeight:        8,
			FontOffset:        5,
			UseSoftwareScroll: true,
		})
		term.Println("FAULT: " + info.Code.String())
		if info.Detail != "" {
			term.Println(info.Detail)
		}
		term.Println(buildinfo.Short())

		panel := display.NewController(blk, panelAddr)
		if panel.Window() == nil {
			_ = blk.Tx(uint16(panelAddr), fb.Bytes(), nil)
		}
	})
}
