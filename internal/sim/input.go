package sim

import "github.com/banshee-data/motion.swarm/internal/config"

// InputKind identifies an input event.
type InputKind int

const (
	InputPress InputKind = iota
	InputRelease
	InputMove
	InputLeave
	InputKey
	InputResize
	InputParams
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Input is a discrete event from the display surface, keyboard or the
// monitor API. Inputs are queued and applied at the start of the next tick.
type Input struct {
	Kind   InputKind
	X, Y   float64
	Button Button
	Key    rune
	Width  int
	Height int
	Params *config.TuningConfig
}

// Press returns a pointer press at (x, y).
func Press(x, y float64, b Button) Input {
	return Input{Kind: InputPress, X: x, Y: y, Button: b}
}

// Release returns a pointer release at (x, y).
func Release(x, y float64, b Button) Input {
	return Input{Kind: InputRelease, X: x, Y: y, Button: b}
}

// Move returns a pointer move to (x, y).
func Move(x, y float64) Input {
	return Input{Kind: InputMove, X: x, Y: y}
}

// Leave returns a pointer-left-surface event.
func Leave() Input {
	return Input{Kind: InputLeave}
}

// Key returns a key press.
func Key(r rune) Input {
	return Input{Kind: InputKey, Key: r}
}

// Resize returns a display resize.
func Resize(width, height int) Input {
	return Input{Kind: InputResize, Width: width, Height: height}
}

// Params returns a live parameter patch. Fields left nil keep their value.
func Params(patch *config.TuningConfig) Input {
	return Input{Kind: InputParams, Params: patch}
}

// Enqueue queues an input for the next tick. Safe from any goroutine.
func (s *Simulation) Enqueue(in Input) {
	s.inputMu.Lock()
	s.inputs = append(s.inputs, in)
	s.inputMu.Unlock()
}

func (s *Simulation) drainInputs() {
	s.inputMu.Lock()
	pending := s.inputs
	s.inputs = s.spare[:0]
	s.inputMu.Unlock()

	for _, in := range pending {
		s.apply(in)
	}
	clear(pending)
	s.spare = pending[:0]
}

func (s *Simulation) apply(in Input) {
	switch in.Kind {
	case InputPress:
		s.press(in)
	case InputRelease:
		// Releases carry no behaviour; the pulse runs its own lifetime.
	case InputMove:
		s.pointer.Move(in.X, in.Y)
	case InputLeave:
		s.pointer.Leave()
	case InputKey:
		s.key(in.Key)
	case InputResize:
		s.resize(in.Width, in.Height)
	case InputParams:
		s.applyParams(in.Params)
	}
}

func (s *Simulation) press(in Input) {
	if s.policy == config.PolicyFlowField {
		s.pulse.Trigger(in.X, in.Y, in.Button != ButtonLeft)
		return
	}
	s.swarm.Spawn(in.X, in.Y)
}
