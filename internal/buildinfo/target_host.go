//go:build !tinygo

package buildinfo

const target = "host"
