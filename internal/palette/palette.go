// Package palette assigns deterministic colors to participants. Color
// assignment is a pure function of the person and their lane index, so
// identities never shift between renders.
package palette

import (
	"hash/fnv"
	"math"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// basePalette is cycled by lane index before falling back to hashed
// hues, so small participant sets get maximally distinct colors.
var basePalette = []core.Color{
	{R: 0x1f, G: 0x77, B: 0xb4},
	{R: 0xff, G: 0x7f, B: 0x0e},
	{R: 0x2c, G: 0xa0, B: 0x2c},
	{R: 0xd6, G: 0x27, B: 0x28},
	{R: 0x94, G: 0x67, B: 0xbd},
	{R: 0x8c, G: 0x56, B: 0x4b},
	{R: 0xe3, G: 0x77, B: 0xc2},
	{R: 0x7f, G: 0x7f, B: 0x7f},
	{R: 0xbc, G: 0xbd, B: 0x22},
	{R: 0x17, G: 0xbe, B: 0xcf},
}

// ColorForPerson returns the color for a participant at the given lane
// index. The first len(basePalette) lanes use the fixed palette; beyond
// that the person's ID is hashed to a hue so additional participants
// still get stable, reasonably distinct colors.
func ColorForPerson(personID core.PersonID, index int) core.Color {
	if index >= 0 && index < len(basePalette) {
		return basePalette[index]
	}

	h := fnv.New32a()
	h.Write([]byte(personID))
	hue := float64(h.Sum32()%360)
	return hsvToRGB(hue, 0.65, 0.85)
}

// hsvToRGB converts hue [0,360), saturation and value [0,1] to sRGB.
func hsvToRGB(h, s, v float64) core.Color {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return core.Color{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
	}
}
