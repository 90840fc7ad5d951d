// Package config handles tool configuration loading and management.
package config

// Config holds all hair tool settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds the guide simulation parameters applied to a new scene.
type SimulationConfig struct {
	DefaultLength        float32 `yaml:"default_length"`  // meters
	DefaultSteps         int     `yaml:"default_steps"`   // control points per new curve
	Gravity              float32 `yaml:"gravity"`         // m/s^2
	Damping              float32 `yaml:"damping"`         // Verlet damping [0..1]
	Stiffness            float32 `yaml:"stiffness"`       // bend stiffness [0..1]
	SolverIterations     int     `yaml:"solver_iterations"`
	CollisionThickness   float32 `yaml:"collision_thickness"` // meters
	CollisionFriction    float32 `yaml:"collision_friction"`  // [0..1]
	DragLerp             float32 `yaml:"drag_lerp"`           // [0..1]
	EnableSimulation     bool    `yaml:"enable_simulation"`
	EnableMeshCollision  bool    `yaml:"enable_mesh_collision"`
	EnableCurveCollision bool    `yaml:"enable_curve_collision"`
}

// SchedulerConfig holds fixed-timestep scheduler parameters.
type SchedulerConfig struct {
	FixedDt     float32 `yaml:"fixed_dt"`      // seconds per solver substep
	MaxFrameDt  float32 `yaml:"max_frame_dt"`  // clamp for stalled frames, seconds
	MaxSubsteps int     `yaml:"max_substeps"`  // hard cap per frame
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the tool's standard defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			DefaultLength:        0.3,
			DefaultSteps:         12,
			Gravity:              0.0,
			Damping:              0.9,
			Stiffness:            0.1,
			SolverIterations:     24,
			CollisionThickness:   0.002,
			CollisionFriction:    1.0,
			DragLerp:             0.35,
			EnableSimulation:     true,
			EnableMeshCollision:  true,
			EnableCurveCollision: false,
		},
		Scheduler: SchedulerConfig{
			FixedDt:     1.0 / 120.0,
			MaxFrameDt:  1.0 / 15.0,
			MaxSubsteps: 8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
