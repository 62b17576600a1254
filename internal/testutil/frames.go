// Package testutil provides frame fixtures and fakes shared by tests.
package testutil

import (
	"errors"
	"sync"

	"github.com/banshee-data/motion.swarm/internal/calibration"
	"github.com/banshee-data/motion.swarm/internal/motion"
)

// SolidFrame returns a w x h frame filled with one gray level.
func SolidFrame(w, h int, gray uint8) *motion.Frame {
	f := motion.NewFrame(w, h)
	f.Fill(gray, gray, gray)
	return f
}

// BlockFrame returns a gray background with a bright square at (x, y).
func BlockFrame(w, h, x, y, size int, bg, fg uint8) *motion.Frame {
	f := SolidFrame(w, h, bg)
	f.FillRect(x, y, size, size, fg, fg, fg)
	return f
}

// FakeSource is a VideoSource whose frame is set by the test.
type FakeSource struct {
	mu       sync.Mutex
	frame    *motion.Frame
	ready    bool
	restarts int
	failNext bool
}

// NewFakeSource returns a source that is ready with f.
func NewFakeSource(f *motion.Frame) *FakeSource {
	return &FakeSource{frame: f, ready: f != nil}
}

// Ready reports whether a frame is available.
func (s *FakeSource) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Frame returns the current frame.
func (s *FakeSource) Frame() *motion.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// SetFrame replaces the frame and marks the source ready.
func (s *FakeSource) SetFrame(f *motion.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.ready = f != nil
}

// FailRestart makes the next Restart return an error.
func (s *FakeSource) FailRestart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

// Restart drops readiness until the next SetFrame.
func (s *FakeSource) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return errors.New("device busy")
	}
	s.restarts++
	s.ready = false
	return nil
}

// Restarts returns how many times Restart succeeded.
func (s *FakeSource) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// RecordingSink collects calibration results.
type RecordingSink struct {
	mu      sync.Mutex
	results []calibration.Result
	Err     error
}

// RecordCalibration stores res and returns Err.
func (r *RecordingSink) RecordCalibration(res calibration.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.Err
}

// Results returns a copy of everything recorded.
func (r *RecordingSink) Results() []calibration.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]calibration.Result(nil), r.results...)
}
