//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"quartz/app"
	"quartz/hal"
)

func main() {
	var (
		headless = flag.Bool("headless", false, "Run on virtual time without a window.")
		ticks    = flag.Uint64("ticks", 0, "Stop after N virtual milliseconds in headless mode (0 = run until interrupted).")
		hz       = flag.Int("hz", 0, "Pace headless mode at N virtual milliseconds per wall second (0 = unpaced).")
		telem    = flag.String("telemetry", "", "Append raw telemetry frames to this file.")
	)
	flag.Parse()

	var sink io.Writer
	if *telem != "" {
		f, err := os.OpenFile(*telem, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		sink = f
	}

	h := hal.NewHost(!*headless, sink)

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, h, app.Run, hal.HeadlessConfig{Ticks: *ticks, Hz: *hz})
		if err != nil && err != context.Canceled {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(h, app.Run); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
