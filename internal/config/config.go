// Package config handles tool configuration loading.
package config

// Config holds all remeshing tool settings.
type Config struct {
	Remesh  RemeshConfig  `yaml:"remesh"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RemeshConfig holds the remeshing parameters. Zero values select the
// curvature-derived defaults at run time.
type RemeshConfig struct {
	// Tolerance is the sizing-field approximation tolerance.
	Tolerance float64 `yaml:"tolerance"`
	// EdgeMin and EdgeMax bound edge lengths. Zero derives them from
	// the input bounding box.
	EdgeMin float64 `yaml:"edge_min"`
	EdgeMax float64 `yaml:"edge_max"`
	// DistTolerance is the acceptable surface distance after remeshing.
	DistTolerance float64 `yaml:"dist_tolerance"`
	// Iterations is the number of split/collapse/flip/relax rounds per
	// attempt.
	Iterations int `yaml:"iterations"`
	// Attempts bounds the retry loop.
	Attempts int `yaml:"attempts"`
	// SamplesPerArea sets the surface sampling density of the distance
	// check.
	SamplesPerArea float64 `yaml:"samples_per_area"`
	// NoProjection disables re-projection onto the input surface.
	NoProjection bool `yaml:"no_projection"`
}

// OutputConfig holds output encoding settings.
type OutputConfig struct {
	// Precision is the number of significant digits for text formats.
	Precision int `yaml:"precision"`
	// BinaryPLY selects binary PLY output.
	BinaryPLY bool `yaml:"binary_ply"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Remesh: RemeshConfig{
			Tolerance:  0.001,
			Iterations: 5,
			Attempts:   3,
		},
		Output: OutputConfig{
			Precision: 17,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
