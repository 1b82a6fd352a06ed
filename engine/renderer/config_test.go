package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextRejectsInvalidConfig(t *testing.T) {
	_, err := NewContext(gputest.NewDevice(), WithInflightFrames(4))
	assert.ErrorContains(t, err, "inflight_frames")
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
backend = "webgpu"
width = 1920
height = 1080
max_frustums = 6
global_defines = ["LOG_DEPTH"]

[network]
max_concurrent_requests = 12
`))
	require.NoError(t, err)
	assert.Equal(t, BackendTypeWebGPU, cfg.Backend)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 6, cfg.MaxFrustums)
	assert.Equal(t, []string{"LOG_DEPTH"}, cfg.GlobalDefines)
	assert.Equal(t, 12, cfg.Network.MaxConcurrentRequests)
	assert.Equal(t, 30.0, cfg.Network.TimeoutSeconds, "unset keys keep their defaults")
	assert.Equal(t, buffer.BufferSyncStateCount, cfg.InflightFrames)

	_, err = ParseConfig([]byte("max_frustum = 6\n"))
	assert.ErrorContains(t, err, "unknown config keys")

	_, err = ParseConfig([]byte(`backend = "metal"`))
	assert.ErrorContains(t, err, "metal")

	_, err = ParseConfig([]byte("inflight_frames = 0\n"))
	assert.ErrorContains(t, err, "inflight_frames")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globe.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 640\nheight = 480\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
