//go:build tinygo && baremetal

package main

import (
	"quartz/app"
	"quartz/hal"
)

func main() {
	app.Run(hal.New())
}
