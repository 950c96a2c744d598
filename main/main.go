package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/Maxashi/spiderbro"
	"github.com/Maxashi/spiderbro/components/ground"
	"github.com/Maxashi/spiderbro/components/legs"
	"github.com/Maxashi/spiderbro/components/mover"
	"github.com/Maxashi/spiderbro/config"
	fakephys "github.com/Maxashi/spiderbro/fake/phys"
	"github.com/Maxashi/spiderbro/inspect"
)

var (
	configPath = flag.String("config", "", "path to a YAML config file")
	mode       = flag.String("mode", "spider", "spider (leg stepping) or wallwalk (character controller)")
	inspectOn  = flag.String("inspect", "", "serve a websocket state stream on this address")
	duration   = flag.Duration("duration", 0, "stop after this long (0 = run until signalled)")
	debug      = flag.Bool("debug", false, "verbose logging")
)

func main() {
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Printf("error loading config: %s\n", err)
			os.Exit(1)
		}
	}

	// A flat floor with four walls makes a decent wall-walking playground.
	world := fakephys.NewRoom(20)

	w := spiderbro.New(cfg)
	w.State.Position = mgl64.Vec3{0, cfg.Mover.RideHeight, 0}

	det := ground.New(world, cfg.Ground)
	w.Add(det)

	var lg *legs.Legs
	switch *mode {
	case "spider":
		// The mover drives the body from the scripted input; the leg
		// engine ticks after it so the foot-polygon orientation wins.
		w.Add(mover.New(world, cfg))
		lg = legs.New(world, cfg)
		w.Add(lg)
	case "wallwalk":
		w.Add(mover.New(world, cfg))
	default:
		fmt.Printf("unknown mode: %s\n", *mode)
		os.Exit(1)
	}

	if err := w.Boot(); err != nil {
		fmt.Printf("error while booting: %s\n", err)
		os.Exit(1)
	}

	// A single mutex covers ticking and snapshotting: the simulation is
	// single-threaded, the inspection stream is not.
	var mu sync.Mutex
	start := time.Now()

	if *inspectOn != "" {
		srv := inspect.NewServer(inspect.SourceFunc(func() inspect.Snapshot {
			mu.Lock()
			defer mu.Unlock()
			snap := snapshot(w, det, lg)
			snap.Time = time.Since(start).Seconds()
			return snap
		}), time.Duration(cfg.Inspect.Interval*float64(time.Second)))

		go func() {
			if err := srv.ListenAndServe(*inspectOn); err != nil {
				logrus.Warnf("inspection server: %s", err)
			}
		}()
	}

	t := time.NewTicker(time.Second / time.Duration(cfg.TickRate))
	defer t.Stop()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("Caught signal, shutting down...")
		mu.Lock()
		w.State.Shutdown = true
		mu.Unlock()
	}()

	if *duration > 0 {
		go func() {
			time.Sleep(*duration)
			mu.Lock()
			w.State.Shutdown = true
			mu.Unlock()
		}()
	}

	for now := range t.C {
		mu.Lock()
		if w.State.Shutdown {
			if lg != nil {
				lg.Halt()
			}
			mu.Unlock()
			break
		}

		w.State.Input = scriptedInput(now.Sub(start).Seconds())
		w.Tick(now)
		mu.Unlock()
	}

	fmt.Println("Done.")
}

// scriptedInput walks the body forward, veering over time so the demo
// eventually meets a wall and climbs it.
func scriptedInput(elapsed float64) spiderbro.Input {
	return spiderbro.Input{
		Move:   mgl64.Vec2{0.3 * math.Sin(elapsed / 5), 1},
		Sprint: elapsed > 20,
	}
}

func snapshot(w *spiderbro.Walker, det *ground.Detector, lg *legs.Legs) inspect.Snapshot {
	s := &w.State

	snap := inspect.Snapshot{
		Position: inspect.V3(s.Position.X(), s.Position.Y(), s.Position.Z()),
		Rotation: [4]float64{s.Rotation.W, s.Rotation.V.X(), s.Rotation.V.Y(), s.Rotation.V.Z()},
		Grounded: s.Grounded,
		Normal:   inspect.V3(s.GroundNormal.X(), s.GroundNormal.Y(), s.GroundNormal.Z()),
	}

	for _, p := range det.SamplePoints() {
		snap.SamplePoints = append(snap.SamplePoints, inspect.V3(p.Offset.X(), p.Offset.Y(), p.Offset.Z()))
	}

	if lg != nil {
		for _, l := range lg.LegStates() {
			snap.Legs = append(snap.Legs, inspect.LegSnapshot{
				Name:    l.Name,
				Foot:    inspect.V3(l.Foot.X(), l.Foot.Y(), l.Foot.Z()),
				Planted: inspect.V3(l.Planted.X(), l.Planted.Y(), l.Planted.Z()),
				Moving:  l.Moving,
			})
		}
	}

	return snap
}
