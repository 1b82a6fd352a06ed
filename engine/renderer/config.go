package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/pelletier/go-toml/v2"
)

// Config is the file-level configuration of a Context and of the engine services around it.
//
//	backend = "opengl"
//	width = 1280
//	height = 720
//	inflight_frames = 3
//	max_frustums = 4
//	global_defines = ["LOG_DEPTH"]
//
//	[worker]
//	max_active_tasks = 8
//
//	[network]
//	max_concurrent_requests = 6
//	timeout_seconds = 30
type Config struct {
	Backend BackendType `toml:"backend"`
	Width   int         `toml:"width"`
	Height  int         `toml:"height"`

	// InflightFrames is the number of frames the CPU may run ahead of the GPU, at most
	// buffer.BufferSyncStateCount.
	InflightFrames int `toml:"inflight_frames"`
	// MaxFrustums is the number of frustum slots per frame.
	MaxFrustums int `toml:"max_frustums"`
	// MaxPrograms and MaxPipelines cap the caches; zero is unlimited.
	MaxPrograms  int `toml:"max_programs"`
	MaxPipelines int `toml:"max_pipelines"`
	// UniformOffsetAlignment is the backend's minimum uniform buffer offset alignment.
	UniformOffsetAlignment int      `toml:"uniform_offset_alignment"`
	GlobalDefines          []string `toml:"global_defines"`

	Worker  WorkerConfig  `toml:"worker"`
	Network NetworkConfig `toml:"network"`
}

// WorkerConfig configures the background task processor.
type WorkerConfig struct {
	MaxActiveTasks int `toml:"max_active_tasks"`
}

// NetworkConfig configures the request scheduler.
type NetworkConfig struct {
	MaxConcurrentRequests int     `toml:"max_concurrent_requests"`
	TimeoutSeconds        float64 `toml:"timeout_seconds"`
	UserAgent             string  `toml:"user_agent"`
}

// DefaultConfig returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		Backend:                BackendTypeOpenGL,
		Width:                  1280,
		Height:                 720,
		InflightFrames:         buffer.BufferSyncStateCount,
		MaxFrustums:            4,
		UniformOffsetAlignment: buffer.DefaultUniformOffsetAlignment,
		Worker:                 WorkerConfig{MaxActiveTasks: 8},
		Network: NetworkConfig{
			MaxConcurrentRequests: 6,
			TimeoutSeconds:        30,
			UserAgent:             "oxy-globe",
		},
	}
}

// LoadConfig reads a TOML configuration file over DefaultConfig.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, parsed or validated
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("renderer: reading config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML over DefaultConfig. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the document cannot be parsed or validated
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("renderer: unknown config keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("renderer: parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
//
// Returns:
//   - error: nil when the configuration is usable
func (c Config) Validate() error {
	switch {
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("renderer: invalid surface size %dx%d", c.Width, c.Height)
	case c.InflightFrames < 1 || c.InflightFrames > buffer.BufferSyncStateCount:
		return fmt.Errorf("renderer: inflight_frames must be in [1, %d], got %d", buffer.BufferSyncStateCount, c.InflightFrames)
	case c.MaxFrustums < 1:
		return fmt.Errorf("renderer: max_frustums must be > 0, got %d", c.MaxFrustums)
	case c.MaxPrograms < 0 || c.MaxPipelines < 0:
		return fmt.Errorf("renderer: cache limits must not be negative")
	case c.UniformOffsetAlignment < 1:
		return fmt.Errorf("renderer: uniform_offset_alignment must be > 0, got %d", c.UniformOffsetAlignment)
	case c.Worker.MaxActiveTasks < 1:
		return fmt.Errorf("renderer: worker.max_active_tasks must be > 0, got %d", c.Worker.MaxActiveTasks)
	case c.Network.MaxConcurrentRequests < 1:
		return fmt.Errorf("renderer: network.max_concurrent_requests must be > 0, got %d", c.Network.MaxConcurrentRequests)
	}
	return nil
}
