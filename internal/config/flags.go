package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile    = flag.String("logfile", "", "Write logs to this file")
	flagGravity    = flag.Float64("gravity", -1, "Gravity override in m/s^2 (negative = use config)")
	flagIterations = flag.Int("iterations", 0, "Solver iterations per substep (0 = use config)")
	flagNoCollide  = flag.Bool("no-mesh-collision", false, "Disable mesh collision")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagGravity >= 0 {
		cfg.Simulation.Gravity = float32(*flagGravity)
	}
	if *flagIterations > 0 {
		cfg.Simulation.SolverIterations = *flagIterations
	}
	if *flagNoCollide {
		cfg.Simulation.EnableMeshCollision = false
	}
}
