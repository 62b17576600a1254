package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/motion.swarm/internal/sim"
)

// mouseTracker turns tcell's button-mask mouse reports into the press,
// release and move inputs the simulation expects.
type mouseTracker struct {
	held    tcell.ButtonMask
	lastCol int
	lastRow int
	seen    bool
}

var buttonMap = []struct {
	mask   tcell.ButtonMask
	button sim.Button
}{
	{tcell.Button1, sim.ButtonLeft},
	{tcell.Button2, sim.ButtonRight},
	{tcell.Button3, sim.ButtonMiddle},
}

func (m *mouseTracker) translate(col, row int, buttons tcell.ButtonMask) []sim.Input {
	x, y := pixelOf(col, row)
	var out []sim.Input
	if !m.seen || col != m.lastCol || row != m.lastRow {
		out = append(out, sim.Move(x, y))
	}
	for _, b := range buttonMap {
		was := m.held&b.mask != 0
		now := buttons&b.mask != 0
		switch {
		case now && !was:
			out = append(out, sim.Press(x, y, b.button))
		case was && !now:
			out = append(out, sim.Release(x, y, b.button))
		}
	}
	m.held = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	m.lastCol, m.lastRow, m.seen = col, row, true
	return out
}
