// Package render holds the fixed-buffer text formatting used while
// composing frames. Composition runs in interrupt context, so nothing
// here allocates; callers bring their own destination buffers.
package render

import "image/color"

// On and Off are the two colors a one-bit panel knows.
var (
	On  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Off = color.RGBA{A: 255}
)

// Pad2 writes v as exactly two digits, clamped to 99.
func Pad2(dst []byte, v uint8) {
	if len(dst) < 2 {
		return
	}
	if v > 99 {
		v = 99
	}
	dst[0] = '0' + v/10
	dst[1] = '0' + v%10
}

// Clock formats HH:MM:SS.
func Clock(dst []byte, h, m, s uint8) int {
	if len(dst) < 8 {
		return 0
	}
	Pad2(dst[0:], h)
	dst[2] = ':'
	Pad2(dst[3:], m)
	dst[5] = ':'
	Pad2(dst[6:], s)
	return 8
}

// MinSec formats a second count as MM:SS, minutes wrapping at 100.
func MinSec(dst []byte, secs uint32) int {
	if len(dst) < 5 {
		return 0
	}
	Pad2(dst[0:], uint8(secs/60%100))
	dst[2] = ':'
	Pad2(dst[3:], uint8(secs%60))
	return 5
}

// Tenths formats a tenth-second count as MM:SS.T, minutes wrapping at
// 100.
func Tenths(dst []byte, tenths uint32) int {
	if len(dst) < 7 {
		return 0
	}
	n := MinSec(dst, tenths/10)
	dst[n] = '.'
	dst[n+1] = '0' + uint8(tenths%10)
	return n + 2
}

// Date formats DD.MM.YYYY.
func Date(dst []byte, day, month uint8, year uint16) int {
	if len(dst) < 10 {
		return 0
	}
	Pad2(dst[0:], day)
	dst[2] = '.'
	Pad2(dst[3:], month)
	dst[5] = '.'
	dst[6] = '0' + byte(year/1000%10)
	dst[7] = '0' + byte(year/100%10)
	dst[8] = '0' + byte(year/10%10)
	dst[9] = '0' + byte(year%10)
	return 10
}

var weekdays = [8]string{"???", "MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// Weekday returns a three-letter weekday name for 1..7.
func Weekday(wd uint8) string {
	if wd > 7 {
		wd = 0
	}
	return weekdays[wd]
}

// MilliC formats milli-degrees Celsius with one decimal, like -12.3C.
func MilliC(dst []byte, mc int32) int {
	if len(dst) < 8 {
		return 0
	}
	n := 0
	if mc < 0 {
		dst[n] = '-'
		n++
		mc = -mc
	}
	n += Uint(dst[n:], uint32(mc/1000))
	dst[n] = '.'
	dst[n+1] = '0' + byte(mc%1000/100)
	dst[n+2] = 'C'
	return n + 3
}

// Uint writes v in decimal and reports the width.
func Uint(dst []byte, v uint32) int {
	if len(dst) == 0 {
		return 0
	}
	if v == 0 {
		dst[0] = '0'
		return 1
	}
	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = '0' + byte(v%10)
		v /= 10
	}
	return copy(dst, tmp[i:])
}
