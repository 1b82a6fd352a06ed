package renderer

import "fmt"

// BackendType identifies the GPU backend implementation a Context runs on.
type BackendType int

const (
	// BackendTypeOpenGL selects the OpenGL 4.1 core backend.
	BackendTypeOpenGL BackendType = iota

	// BackendTypeWebGPU selects the WebGPU backend.
	BackendTypeWebGPU
)

func (b BackendType) String() string {
	switch b {
	case BackendTypeOpenGL:
		return "opengl"
	case BackendTypeWebGPU:
		return "webgpu"
	default:
		return fmt.Sprintf("BackendType(%d)", int(b))
	}
}

// MarshalText encodes the backend by name.
func (b BackendType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a backend name, so configuration files can say backend = "webgpu".
func (b *BackendType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "opengl", "gl":
		*b = BackendTypeOpenGL
	case "webgpu", "wgpu":
		*b = BackendTypeWebGPU
	default:
		return fmt.Errorf("renderer: unknown backend %q", text)
	}
	return nil
}
