package webgpu

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

var (
	versionRegex    = regexp.MustCompile(`^\s*#version\s+.*$`)
	precisionRegex  = regexp.MustCompile(`^\s*precision\s+\w+\s+\w+\s*;\s*$`)
	qualifierRegex  = regexp.MustCompile(`\b(?:lowp|mediump|highp)\s+`)
	blockRegex      = regexp.MustCompile(`layout\s*\(\s*std140\s*\)\s*uniform\s+(\w+)`)
	looseRegex      = regexp.MustCompile(`^\s*uniform\s+(\w+)\s+(\w+)`)
	interfaceRegex  = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?((?:(?:flat|smooth|centroid)\s+)*)(in|out)\s+(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;\s*$`)
	vertexIDRegex   = regexp.MustCompile(`\bgl_VertexID\b`)
	instanceIDRegex = regexp.MustCompile(`\bgl_InstanceID\b`)
	mainRegex       = regexp.MustCompile(`\bvoid\s+main\s*\(\s*\)`)
)

// depthRemap wraps the vertex entry point, moving clip-space depth from [-w, w] to [0, w].
const depthRemap = `
void main()
{
    czm_glesMain();
    gl_Position.z = 0.5 * (gl_Position.z + gl_Position.w);
}`

// varying is a vertex output matched by name with a fragment input.
type varying struct {
	name      string
	locations int
}

// locationCount is the number of interface locations a value of the type occupies.
func locationCount(typ string, count int) int {
	n := 1
	switch typ {
	case "mat2":
		n = 2
	case "mat3":
		n = 3
	case "mat4":
		n = 4
	}
	return n * max(count, 1)
}

// varyingLocations assigns consecutive locations to the vertex outputs in name order, so the
// fragment stage reaches the same numbers without seeing the vertex stage.
func varyingLocations(vertexSource string) map[string]int {
	var vs []varying
	for _, line := range strings.Split(vertexSource, "\n") {
		m := interfaceRegex.FindStringSubmatch(line)
		if m == nil || m[2] != "out" {
			continue
		}
		count, _ := strconv.Atoi(m[5])
		vs = append(vs, varying{name: m[4], locations: locationCount(m[3], count)})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].name < vs[j].name })

	locations := make(map[string]int, len(vs))
	next := 0
	for _, v := range vs {
		locations[v.name] = next
		next += v.locations
	}
	return locations
}

// toGLSL450 rewrites a GLSL ES 3.00 stage into the GLSL 4.50 dialect the WebGPU shader front
// end accepts: every uniform block, vertex input, varying and fragment output gets an explicit
// layout. Line numbers are preserved; the vertex stage gains a wrapper entry point at the end
// that remaps depth to the WebGPU clip volume.
//
// Parameters:
//   - stage: the stage the source belongs to
//   - source: the GLSL ES 3.00 source
//   - desc: supplies the block bindings and attribute locations
//   - varyings: the locations from varyingLocations
//
// Returns:
//   - string: the rewritten source
//   - error: an error for constructs with no WebGPU equivalent, such as loose uniforms
func toGLSL450(stage gpu.ShaderStage, source string, desc gpu.ProgramDescriptor, varyings map[string]int) (string, error) {
	lines := strings.Split(source, "\n")
	fragmentOutput := 0
	for i, line := range lines {
		switch {
		case versionRegex.MatchString(line):
			lines[i] = "#version 450"
			continue
		case precisionRegex.MatchString(line):
			lines[i] = ""
			continue
		}
		line = qualifierRegex.ReplaceAllString(line, "")

		if m := blockRegex.FindStringSubmatchIndex(line); m != nil {
			name := line[m[2]:m[3]]
			binding, ok := desc.UniformBlocks[name]
			if !ok {
				return "", fmt.Errorf("webgpu: %s uniform block %s has no binding", stage, name)
			}
			line = line[:m[0]] + fmt.Sprintf("layout(std140, set = 0, binding = %d) uniform %s", binding, name) + line[m[1]:]
		} else if m := looseRegex.FindStringSubmatch(line); m != nil {
			return "", fmt.Errorf("webgpu: %s line %d: loose uniform %s %s has no WebGPU binding", stage, i+1, m[1], m[2])
		}

		if m := interfaceRegex.FindStringSubmatch(line); m != nil {
			interp, dir, typ, name := m[1], m[2], m[3], m[4]
			decl := interp + dir + " " + typ + " " + name
			if m[5] != "" {
				decl += "[" + m[5] + "]"
			}
			var location int
			switch {
			case stage == gpu.ShaderStageVertex && dir == "in":
				loc, ok := desc.AttributeLocations[name]
				if !ok {
					return "", fmt.Errorf("webgpu: vertex input %s has no location", name)
				}
				location = loc
			case stage == gpu.ShaderStageFragment && dir == "out":
				location = fragmentOutput
				fragmentOutput++
			default:
				loc, ok := varyings[name]
				if !ok {
					return "", fmt.Errorf("webgpu: %s varying %s is not written by the vertex stage", stage, name)
				}
				location = loc
			}
			line = fmt.Sprintf("layout(location = %d) %s;", location, decl)
		}

		if stage == gpu.ShaderStageVertex {
			line = mainRegex.ReplaceAllString(line, "void czm_glesMain()")
			line = vertexIDRegex.ReplaceAllString(line, "gl_VertexIndex")
			line = instanceIDRegex.ReplaceAllString(line, "gl_InstanceIndex")
		}
		lines[i] = line
	}
	out := strings.Join(lines, "\n")
	if stage == gpu.ShaderStageVertex {
		out += "\n" + depthRemap
	}
	return out, nil
}
