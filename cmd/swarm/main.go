// Command swarm runs the motion-reactive swarm headless: it reads a video
// source, steps the simulation at a fixed rate, records calibration runs to
// SQLite and serves the monitor HTTP surface.
//
// Usage:
//
//	swarm [flags]
//	swarm migrate [-db path] <up|down|status|version|force> [args]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/banshee-data/motion.swarm/internal/camera"
	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/db"
	"github.com/banshee-data/motion.swarm/internal/monitor"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/sim"
	"github.com/banshee-data/motion.swarm/internal/timeutil"
	"github.com/banshee-data/motion.swarm/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to a tuning config JSON file (default: built-in defaults)")
	dbFile      = flag.String("db", "swarm.db", "Path to the SQLite database file (empty disables persistence)")
	listen      = flag.String("listen", ":8080", "Monitor HTTP listen address (empty disables the monitor)")
	source      = flag.String("source", "synthetic", "Video source: synthetic[:seed], webcam[:device] or none")
	videoWidth  = flag.Int("video-width", 320, "Video capture width")
	videoHeight = flag.Int("video-height", 240, "Video capture height")
	videoFPS    = flag.Float64("video-fps", 30, "Synthetic source frame rate")
	width       = flag.Int("width", 1280, "Display width in pixels")
	height      = flag.Int("height", 720, "Display height in pixels")
	policy      = flag.String("policy", "", "Override the config policy: flocking or flowfield")
	debug       = flag.Bool("debug", false, "Start with the debug view on")
	seed        = flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	tickRate    = flag.Float64("tick-rate", sim.DefaultTickRate, "Simulation ticks per second")
	logLevel    = flag.String("log", "ops", "Log streams to enable: ops, diag or trace")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		args, path := splitMigrateArgs(os.Args[2:])
		if err := db.RunMigrateCommand(args, path, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	flag.Parse()
	if *showVersion {
		fmt.Println("swarm", version.String())
		return
	}

	writers, err := logWriters(*logLevel, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	monitoring.SetLogWriters(writers)

	cfg, err := buildConfig(*configFile, *policy)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	src, err := camera.Open(*source, *videoWidth, *videoHeight)
	if err != nil {
		log.Fatalf("failed to open video source: %v", err)
	}
	if src != nil {
		defer src.Close()
	}

	opts := []sim.Option{sim.WithDebug(*debug), sim.WithTickRate(*tickRate)}
	if *seed != 0 {
		opts = append(opts, sim.WithSeed(*seed))
	}

	var store *db.DB
	if *dbFile != "" {
		store, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		opts = append(opts, sim.WithCalibrationSink(store))
	}

	var video sim.VideoSource
	if src != nil {
		video = src
	}
	s := sim.New(cfg, video, *width, *height, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if syn, ok := src.(*camera.Synthetic); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syn.Run(ctx, timeutil.RealClock{}, *videoFPS)
			monitoring.Opsf("synthetic source stopped")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Run(ctx); err != nil && err != context.Canceled {
			monitoring.Opsf("simulation stopped: %v", err)
		}
	}()

	if *listen != "" {
		wcfg := monitor.WebServerConfig{Address: *listen, Sim: s}
		if store != nil {
			wcfg.Store = store
		}
		server := monitor.NewWebServer(wcfg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(ctx); err != nil {
				monitoring.Opsf("monitor server failed: %v", err)
				stop()
			}
		}()
	}

	wg.Wait()
	monitoring.Opsf("Graceful shutdown complete")
}

// buildConfig layers the optional config file and the -policy override on
// top of the built-in defaults.
func buildConfig(path, policyOverride string) (*config.TuningConfig, error) {
	cfg := config.DefaultTuningConfig()
	if path != "" {
		loaded, err := config.LoadTuningConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(loaded)
	}
	if policyOverride != "" {
		cfg = cfg.Merge(&config.TuningConfig{Policy: &policyOverride})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logWriters maps a -log level onto the three monitoring streams. Each
// level includes the ones before it.
func logWriters(level string, w io.Writer) (monitoring.LogWriters, error) {
	switch level {
	case "ops":
		return monitoring.LogWriters{Ops: w}, nil
	case "diag":
		return monitoring.LogWriters{Ops: w, Diag: w}, nil
	case "trace":
		return monitoring.LogWriters{Ops: w, Diag: w, Trace: w}, nil
	default:
		return monitoring.LogWriters{}, fmt.Errorf("unknown log level %q (want ops, diag or trace)", level)
	}
}

// splitMigrateArgs removes a "-db <path>" or "-db=<path>" argument from
// the migrate subcommand's arguments and returns it separately.
func splitMigrateArgs(args []string) ([]string, string) {
	path := "swarm.db"
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case (a == "-db" || a == "--db") && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(a, "-db="):
			path = strings.TrimPrefix(a, "-db=")
		case strings.HasPrefix(a, "--db="):
			path = strings.TrimPrefix(a, "--db=")
		default:
			rest = append(rest, a)
		}
	}
	return rest, path
}
