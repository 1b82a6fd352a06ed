package opengl

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"
)

// program is a linked GL program object.
type program struct {
	label  string
	handle uint32
}

var _ gpu.Program = &program{}

func (p *program) Label() string { return p.label }

func (p *program) Release() {
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

// translatedStage is one stage rewritten from GLSL ES 3.00 into the desktop dialect, with the
// names the translator gave the stage's interface variables.
type translatedStage struct {
	code    string
	mapping map[string]string
}

// mappedName returns the translated name of an attribute or block, or name itself when the
// translator kept it.
func (t translatedStage) mappedName(name string) string {
	if m, ok := t.mapping[name]; ok && m != "" {
		return m
	}
	return name
}

// translate rewrites source for the GL 4.1 core profile.
func translate(translator *gst.ShaderTranslator, label string, stage gpu.ShaderStage, source string) (translatedStage, error) {
	out, err := translator.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return translatedStage{}, &gpu.CompileError{
			Label:  label,
			Stage:  stage.String(),
			Source: source,
			Log:    err.Error(),
		}
	}
	t := translatedStage{code: out.Code, mapping: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		t.mapping[name] = v.MappedName
	}
	return t, nil
}

func newTranslator() (*gst.ShaderTranslator, error) {
	t, err := gst.NewShaderTranslator(context.Background())
	if err != nil {
		return nil, fmt.Errorf("opengl: creating shader translator: %w", err)
	}
	return t, nil
}

// createProgram translates, compiles and links desc, then fixes attribute locations and
// uniform block bindings so they match what the rest of the engine expects.
func createProgram(translator *gst.ShaderTranslator, desc gpu.ProgramDescriptor) (*program, error) {
	vs, err := translate(translator, desc.Label, gpu.ShaderStageVertex, desc.VertexSource)
	if err != nil {
		return nil, err
	}
	fs, err := translate(translator, desc.Label, gpu.ShaderStageFragment, desc.FragmentSource)
	if err != nil {
		return nil, err
	}

	vertexShader, err := compileShader(desc.Label, gpu.ShaderStageVertex, vs.code)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(desc.Label, gpu.ShaderStageFragment, fs.code)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragmentShader)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertexShader)
	gl.AttachShader(handle, fragmentShader)
	// attribute locations only take effect at link time
	for name, location := range desc.AttributeLocations {
		gl.BindAttribLocation(handle, uint32(location), gl.Str(vs.mappedName(name)+"\x00"))
	}
	gl.LinkProgram(handle)
	gl.DetachShader(handle, vertexShader)
	gl.DetachShader(handle, fragmentShader)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return nil, &gpu.CompileError{
			Label:  desc.Label,
			Stage:  "link",
			Source: vs.code + "\n" + fs.code,
			Log:    strings.TrimRight(msg, "\x00"),
		}
	}

	for name, binding := range desc.UniformBlocks {
		index := gl.GetUniformBlockIndex(handle, gl.Str(blockName(vs, fs, name)+"\x00"))
		if index == gl.INVALID_INDEX {
			// declared but optimized away by the driver
			continue
		}
		gl.UniformBlockBinding(handle, index, uint32(binding))
	}

	return &program{label: desc.Label, handle: handle}, nil
}

// blockName looks the block up in whichever stage renamed it.
func blockName(vs, fs translatedStage, name string) string {
	if m := vs.mappedName(name); m != name {
		return m
	}
	return fs.mappedName(name)
}

func compileShader(label string, stage gpu.ShaderStage, source string) (uint32, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.ShaderStageFragment {
		kind = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(kind)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, &gpu.CompileError{
			Label:  label,
			Stage:  stage.String(),
			Source: source,
			Log:    strings.TrimRight(msg, "\x00"),
		}
	}
	return shader, nil
}
