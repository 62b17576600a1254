// Package camera provides video sources for the simulation: a synthetic
// scene generator for demos and tests, and an OpenCV webcam reader built
// with the gocv tag.
package camera

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

// ErrNoWebcam is returned when the binary was built without webcam support.
var ErrNoWebcam = errors.New("webcam support not built in (rebuild with -tags gocv)")

// Source is a restartable video feed.
type Source interface {
	Ready() bool
	Frame() *motion.Frame
	Restart() error
	Close() error
}

// Open parses a source spec and opens it. Accepted forms are "synthetic",
// "synthetic:<seed>", "none" and "webcam:<device>".
func Open(spec string, width, height int) (Source, error) {
	kind, arg, _ := strings.Cut(spec, ":")
	switch kind {
	case "", "none":
		return nil, nil
	case "synthetic":
		p := DefaultSyntheticParams()
		p.Width, p.Height = width, height
		if arg != "" {
			seed, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid synthetic seed %q: %w", arg, err)
			}
			p.Seed = seed
		}
		return NewSynthetic(p), nil
	case "webcam":
		device := 0
		if arg != "" {
			d, err := strconv.Atoi(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid webcam device %q: %w", arg, err)
			}
			device = d
		}
		return OpenWebcam(device, width, height)
	default:
		return nil, fmt.Errorf("unknown video source %q", spec)
	}
}
