// Package main is the headless hair guide simulation driver. It builds a
// procedural scalp, roots a batch of guide curves on it, and runs the
// fixed-timestep solver for a while, reporting progress. Useful for
// profiling and for soak-testing solver stability without a viewport.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/RikkTheGaijin/Hair-curve-tool/internal/config"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/mesh"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/engine/scene"
	"github.com/RikkTheGaijin/Hair-curve-tool/internal/logger"
	"github.com/RikkTheGaijin/Hair-curve-tool/pkg/math"
)

var (
	flagCurves     = flag.Int("curves", 64, "Number of guide curves to spawn")
	flagSeconds    = flag.Float64("seconds", 10, "Simulated duration in seconds")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config on exit")
)

// frameDt is the emulated render frame; the scheduler slices it into fixed
// solver substeps.
const frameDt = float32(1.0 / 60.0)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== hairsim ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}

	if *flagSaveConfig {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
		}
	}
}

func run(cfg *config.Config) error {
	s := scene.New()
	applyConfig(s, cfg)

	// A head-sized scalp: 9 cm radius sphere at the origin.
	const radius = 0.09
	s.SetMesh(mesh.NewUVSphere(math.Vec3{}, radius, 24, 32))

	spawned := spawnCurves(s, radius, *flagCurves)
	if spawned == 0 {
		return fmt.Errorf("no curves could be rooted on the scalp")
	}
	logger.Info("curves rooted", zap.Int("requested", *flagCurves), zap.Int("spawned", spawned))

	// Every curve simulates.
	for i := 0; i < s.Guides().Count(); i++ {
		s.Guides().SelectCurve(i, true)
	}

	frames := int(*flagSeconds / float64(frameDt))
	start := time.Now()
	for frame := 0; frame < frames; frame++ {
		s.Simulate(frameDt)

		if frame > 0 && frame%60 == 0 {
			logger.Info("simulating",
				zap.Int("frame", frame),
				zap.Int("curves", s.Guides().Count()),
				zap.Float32("maxSpeed", maxCurveSpeed(s)),
				zap.Duration("elapsed", time.Since(start)))
		}
	}

	elapsed := time.Since(start)
	logger.Info("simulation finished",
		zap.Int("frames", frames),
		zap.Int("curves", s.Guides().Count()),
		zap.Duration("elapsed", elapsed),
		zap.Float64("framesPerSec", float64(frames)/elapsed.Seconds()))
	return nil
}

// applyConfig maps the loaded configuration onto scene settings and the
// scheduler.
func applyConfig(s *scene.Scene, cfg *config.Config) {
	gs := s.Settings()
	gs.DefaultLength = cfg.Simulation.DefaultLength
	gs.DefaultSteps = cfg.Simulation.DefaultSteps
	gs.Gravity = cfg.Simulation.Gravity
	gs.Damping = cfg.Simulation.Damping
	gs.Stiffness = cfg.Simulation.Stiffness
	gs.SolverIterations = cfg.Simulation.SolverIterations
	gs.CollisionThickness = cfg.Simulation.CollisionThickness
	gs.CollisionFriction = cfg.Simulation.CollisionFriction
	gs.DragLerp = cfg.Simulation.DragLerp
	gs.EnableSimulation = cfg.Simulation.EnableSimulation
	gs.EnableMeshCollision = cfg.Simulation.EnableMeshCollision
	gs.EnableCurveCollision = cfg.Simulation.EnableCurveCollision

	s.SetSchedulerParams(scene.SchedulerParams{
		FixedDt:     cfg.Scheduler.FixedDt,
		MaxFrameDt:  cfg.Scheduler.MaxFrameDt,
		MaxSubsteps: cfg.Scheduler.MaxSubsteps,
	})
}

// spawnCurves roots count curves on the upper hemisphere using a sunflower
// spiral, casting rays inward from outside the scalp. Returns how many hit.
func spawnCurves(s *scene.Scene, radius float32, count int) int {
	const goldenAngle = 2.39996323

	spawned := 0
	for i := 0; i < count; i++ {
		// Upper hemisphere only, like a scalp hairline.
		z := 0.15 + 0.85*float32(i)/float32(count)
		r := math32.Sqrt(1 - z*z)
		theta := goldenAngle * float32(i)

		dir := math.Vec3{
			X: r * math32.Cos(theta),
			Y: z,
			Z: r * math32.Sin(theta),
		}
		origin := dir.Scale(radius * 3)
		if s.SpawnCurveAt(origin, dir.Scale(-1)) >= 0 {
			spawned++
		}
	}
	return spawned
}

// maxCurveSpeed reports the fastest implied vertex velocity across all
// curves, in m/s at the configured substep.
func maxCurveSpeed(s *scene.Scene) float32 {
	var maxSpeed float32
	g := s.Guides()
	for ci := 0; ci < g.Count(); ci++ {
		c := g.Curve(ci)
		for i := range c.Points {
			v := c.Points[i].Sub(c.PrevPoints[i]).Length() * 120
			if v > maxSpeed {
				maxSpeed = v
			}
		}
	}
	return maxSpeed
}
