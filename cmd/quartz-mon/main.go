// quartz-mon tails the telemetry stream of a running timepiece and
// prints each frame in human form.
//
// It reads either a serial port or a capture file (the simulator's
// -telemetry output). The decoder resynchronizes on garbage, so
// attaching mid-stream is fine.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tarm/serial"

	"quartz/bus"
	"quartz/display"
	"quartz/telemetry"
)

func main() {
	var (
		port = flag.String("port", "", "Serial port to read (e.g. /dev/ttyACM0).")
		baud = flag.Int("baud", 115200, "Serial baud rate.")
		file = flag.String("file", "", "Read a capture file instead of a port.")
	)
	flag.Parse()

	var src io.ReadCloser
	switch {
	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			fatalf("%v", err)
		}
		src = f
	case *port != "":
		p, err := serial.OpenPort(&serial.Config{
			Name:        *port,
			Baud:        *baud,
			ReadTimeout: time.Second,
		})
		if err != nil {
			fatalf("%v", err)
		}
		src = p
	default:
		fatalf("usage: quartz-mon -port /dev/ttyACM0 [-baud 115200]\n       quartz-mon -file capture.bin")
	}
	defer src.Close()

	if err := monitor(src); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func monitor(src io.Reader) error {
	var (
		dec    telemetry.Decoder
		frames uint32
		buf    = make([]byte, 256)
	)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				rec, ok := dec.Next()
				if !ok {
					break
				}
				frames++
				printRecord(rec)
			}
		}
		if err == io.EOF {
			fmt.Printf("-- %d frames, %d crc errors, %d bytes skipped\n",
				frames, dec.CRCErrors(), dec.Skipped())
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func printRecord(rec telemetry.Record) {
	switch rec.Type {
	case telemetry.RecStatus:
		st, ok := telemetry.ParseStatus(rec.Payload)
		if !ok {
			fmt.Printf("seq=%3d status <%d bytes, malformed>\n", rec.Seq, len(rec.Payload))
			return
		}
		fmt.Printf("seq=%3d status bus=%s/%s cause=%s panel=%s done=%d retry=%d fault=%d reset=%d frames=%d drop=%d swap=%d txdrop=%d\n",
			rec.Seq,
			bus.State(st.BusState), bus.Status(st.BusStatus), bus.Cause(st.LastCause),
			display.PanelState(st.Panel),
			st.Completions, st.Retries, st.Faults, st.Resets,
			st.Frames, st.FrameDrops, st.Swaps, st.TxDrops)

	case telemetry.RecSample:
		sm, ok := telemetry.ParseSample(rec.Payload)
		if !ok {
			fmt.Printf("seq=%3d sample <%d bytes, malformed>\n", rec.Seq, len(rec.Payload))
			return
		}
		temp := "n/a"
		if sm.TempValid {
			temp = fmt.Sprintf("%.3fC", float64(sm.TempMilli)/1000)
		}
		fmt.Printf("seq=%3d sample temp=%s uptime=%ds clockfaults=%d sensorfaults=%d\n",
			rec.Seq, temp, sm.Uptime, sm.ClockFaults, sm.SensorFaults)

	default:
		fmt.Printf("seq=%3d type=0x%02X <%d bytes>\n", rec.Seq, rec.Type, len(rec.Payload))
	}
}
