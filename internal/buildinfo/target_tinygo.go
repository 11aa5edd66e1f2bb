//go:build tinygo

package buildinfo

const target = "rp2040"
