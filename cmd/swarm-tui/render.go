package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/motion.swarm/internal/sim"
)

var (
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	stylePointer = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	stylePulse   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// arrows indexes agent glyphs by heading in 45 degree steps, starting east
// and turning clockwise in screen coordinates.
var arrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// cellOf maps a display pixel to its terminal cell.
func cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

// pixelOf maps a terminal cell to the display pixel at its centre.
func pixelOf(col, row int) (float64, float64) {
	return float64(col)*cellWidth + cellWidth/2, float64(row)*cellHeight + cellHeight/2
}

func heading(vx, vy float64) rune {
	if vx == 0 && vy == 0 {
		return '•'
	}
	a := math.Atan2(vy, vx)
	i := int(math.Round(a/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return arrows[i]
}

// render draws one snapshot onto the top rows-1 rows of the screen and a
// status line on the last row.
func render(screen tcell.Screen, snap sim.Snapshot, cols, rows int) {
	field := rows - 1
	inside := func(c, r int) bool { return c >= 0 && c < cols && r >= 0 && r < field }

	for _, h := range snap.Active {
		c, r := cellOf(h.X, h.Y)
		if !inside(c, r) {
			continue
		}
		level := int32(math.Min(255, 60+h.Intensity))
		screen.SetContent(c, r, ' ', nil, tcell.StyleDefault.Background(tcell.NewRGBColor(level, 0, 0)))
	}

	if snap.Pulse.Active {
		c, r := cellOf(snap.Pulse.X, snap.Pulse.Y)
		if inside(c, r) {
			screen.SetContent(c, r, '◎', nil, stylePulse)
		}
	}

	for _, ag := range snap.Agents {
		c, r := cellOf(ag.X, ag.Y)
		if !inside(c, r) {
			continue
		}
		_, _, bg, _ := screen.GetContent(c, r)
		_, back, _ := bg.Decompose()
		red, green, blue := hslToRGB(ag.Hue, 0.7, 0.6)
		style := tcell.StyleDefault.
			Foreground(tcell.NewRGBColor(int32(red), int32(green), int32(blue))).
			Background(back)
		screen.SetContent(c, r, heading(ag.VX, ag.VY), nil, style)
	}

	if snap.Pointer.Present {
		c, r := cellOf(snap.Pointer.X, snap.Pointer.Y)
		if inside(c, r) {
			screen.SetContent(c, r, '+', nil, stylePointer)
		}
	}

	drawStatus(screen, statusLine(snap), cols, rows-1)
}

func statusLine(snap sim.Snapshot) string {
	video := "no video"
	if snap.VideoReady {
		video = fmt.Sprintf("motion %.1f%%", snap.Stats.Percent())
	}
	return fmt.Sprintf(" tick %d | %s | agents %d | hotspots %d | %s | scale %.2f | cal %s | q quits ",
		snap.Tick, snap.Policy, len(snap.Agents), len(snap.Active), video,
		snap.ThresholdScale, snap.CalibrationState)
}

func drawStatus(screen tcell.Screen, text string, cols, row int) {
	if row < 0 {
		return
	}
	runes := []rune(text)
	for c := 0; c < cols; c++ {
		ch := ' '
		if c < len(runes) {
			ch = runes[c]
		}
		screen.SetContent(c, row, ch, nil, styleStatus)
	}
}

// hslToRGB converts a hue in degrees plus saturation and lightness in [0,1]
// to 8-bit RGB.
func hslToRGB(hue, s, l float64) (r, g, b uint8) {
	h := math.Mod(hue, 360) / 360
	if h < 0 {
		h++
	}
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
