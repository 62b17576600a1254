//go:build gocv

package camera

import (
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/motion"
)

// Webcam reads frames from an OpenCV capture device on its own goroutine
// and converts them to RGBA at the requested size.
type Webcam struct {
	device        int
	width, height int

	mu     sync.Mutex
	front  *motion.Frame
	out    *motion.Frame
	ready  bool
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// OpenWebcam opens device and starts capturing.
func OpenWebcam(device, width, height int) (Source, error) {
	w := &Webcam{
		device: device,
		width:  width,
		height: height,
		front:  motion.NewFrame(width, height),
		out:    motion.NewFrame(width, height),
	}
	if err := w.start(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Webcam) start() error {
	capture, err := gocv.OpenVideoCapture(w.device)
	if err != nil {
		return fmt.Errorf("open webcam %d: %w", w.device, err)
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(w.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(w.height))

	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(capture, w.stop, w.done)
	monitoring.Opsf("webcam %d opened at %dx%d", w.device, w.width, w.height)
	return nil
}

func (w *Webcam) loop(capture *gocv.VideoCapture, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()
	rgba := gocv.NewMat()
	defer rgba.Close()
	sized := gocv.NewMat()
	defer sized.Close()

	failures := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		if ok := capture.Read(&img); !ok || img.Empty() {
			failures++
			if failures == 30 {
				monitoring.Opsf("webcam %d: no frames after %d reads", w.device, failures)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		failures = 0

		if err := gocv.Resize(img, &sized, image.Pt(w.width, w.height), 0, 0, gocv.InterpolationLinear); err != nil {
			monitoring.Diagf("webcam resize: %v", err)
			continue
		}
		if err := gocv.CvtColor(sized, &rgba, gocv.ColorBGRToRGBA); err != nil {
			monitoring.Diagf("webcam color conversion: %v", err)
			continue
		}
		buf := rgba.ToBytes()

		w.mu.Lock()
		if len(buf) == len(w.front.Pix) {
			copy(w.front.Pix, buf)
			w.ready = true
		}
		w.mu.Unlock()
	}
}

// Ready reports whether a frame has arrived since the last (re)start.
func (w *Webcam) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Frame returns the latest frame in a buffer reused across calls.
func (w *Webcam) Frame() *motion.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return nil
	}
	copy(w.out.Pix, w.front.Pix)
	return w.out
}

// Restart closes and reopens the capture device.
func (w *Webcam) Restart() error {
	w.halt()
	w.mu.Lock()
	w.ready = false
	w.closed = false
	w.mu.Unlock()
	return w.start()
}

// Close stops capturing and releases the device.
func (w *Webcam) Close() error {
	w.halt()
	return nil
}

func (w *Webcam) halt() {
	w.mu.Lock()
	if w.closed || w.stop == nil {
		w.mu.Unlock()
		return
	}
	w.closed = true
	stop, done := w.stop, w.done
	w.mu.Unlock()

	close(stop)
	<-done
}
