// Command swarm-tui runs the motion-reactive swarm in a terminal. Agents and
// active hotspots are drawn as cells; the mouse acts as the pointer and the
// keyboard drives the same controls as the monitor API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/motion.swarm/internal/camera"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/timeutil"
)

// Each terminal cell stands for a cellWidth x cellHeight block of display
// pixels.
const (
	cellWidth  = 8
	cellHeight = 16
	frameRate  = 30
)

var (
	configFile = flag.String("config", "", "Path to a tuning config JSON file")
	source     = flag.String("source", "synthetic", "Video source: synthetic[:seed], webcam[:device] or none")
	policy     = flag.String("policy", "", "Override the config policy: flocking or flowfield")
	seed       = flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	logFile    = flag.String("log-file", "", "Write ops logs to this file (the terminal is in use)")
)

// App couples a tcell screen to a running simulation.
type App struct {
	screen tcell.Screen
	sim    *sim.Simulation
	mouse  mouseTracker
	cols   int
	rows   int
}

// NewApp binds a screen to a simulation and sizes the display to the
// screen, reserving the last row for the status line.
func NewApp(screen tcell.Screen, s *sim.Simulation) *App {
	a := &App{screen: screen, sim: s}
	a.handleResize()
	return a
}

func (a *App) handleResize() {
	a.cols, a.rows = a.screen.Size()
	rows := a.rows - 1
	if rows < 1 {
		rows = 1
	}
	a.sim.Enqueue(sim.Resize(a.cols*cellWidth, rows*cellHeight))
}

// handleInput forwards one terminal event to the simulation. It returns
// false when the user asked to quit.
func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			if ev.Rune() == 'q' {
				return false
			}
			a.sim.Enqueue(sim.Key(ev.Rune()))
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if y >= a.rows-1 {
			a.sim.Enqueue(sim.Leave())
			return true
		}
		for _, in := range a.mouse.translate(x, y, ev.Buttons()) {
			a.sim.Enqueue(in)
		}
	case *tcell.EventResize:
		a.screen.Sync()
		a.handleResize()
	}
	return true
}

func (a *App) draw() {
	a.screen.Clear()
	render(a.screen, a.sim.Snapshot(), a.cols, a.rows)
	a.screen.Show()
}

func (a *App) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

func main() {
	flag.Parse()

	logs := monitoring.LogWriters{}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		logs.Ops = f
	}
	monitoring.SetLogWriters(logs)

	cfg := config.DefaultTuningConfig()
	if *configFile != "" {
		loaded, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = cfg.Merge(loaded)
	}
	if *policy != "" {
		cfg = cfg.Merge(&config.TuningConfig{Policy: policy})
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	src, err := camera.Open(*source, 320, 240)
	if err != nil {
		log.Fatalf("failed to open video source: %v", err)
	}
	var video sim.VideoSource
	if src != nil {
		defer src.Close()
		video = src
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	cols, rows := screen.Size()
	var opts []sim.Option
	if *seed != 0 {
		opts = append(opts, sim.WithSeed(*seed))
	}
	s := sim.New(cfg, video, cols*cellWidth, (rows-1)*cellHeight, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if syn, ok := src.(*camera.Synthetic); ok {
		go syn.Run(ctx, timeutil.RealClock{}, 30)
	}
	go func() { _ = s.Run(ctx) }()

	NewApp(screen, s).run(ctx)
}
