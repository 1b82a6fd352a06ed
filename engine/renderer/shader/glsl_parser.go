package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

var (
	// versionRegex matches a #version directive line
	versionRegex = regexp.MustCompile(`^\s*#version\s+.*$`)

	// extensionRegex matches an #extension directive line
	extensionRegex = regexp.MustCompile(`^\s*#extension\s+.*$`)

	// czmIdentifierRegex matches every czm_ prefixed identifier
	czmIdentifierRegex = regexp.MustCompile(`\bczm_\w+`)

	// looseUniformRegex captures type, name and optional array length from a single
	// declaration such as: uniform highp vec4 u_color;
	looseUniformRegex = regexp.MustCompile(`^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;\s*$`)

	// uniformBlockRegex captures the name and body of a std140 uniform block
	uniformBlockRegex = regexp.MustCompile(`(?s)layout\s*\(\s*std140\s*\)\s*uniform\s+(\w+)\s*\{(.*?)\}\s*;`)

	// blockMemberRegex captures type, name and optional array length of one block member
	blockMemberRegex = regexp.MustCompile(`(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)

	// attributeRegex captures the optional explicit location, type and name of a vertex input
	attributeRegex = regexp.MustCompile(`^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:in|attribute)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)

	// directiveRegex captures a pre-processor directive keyword and its argument text
	directiveRegex = regexp.MustCompile(`^\s*#\s*(\w+)\s*(.*?)\s*$`)

	// definedRegex captures the macro of a simple defined(X) or defined X condition
	definedRegex = regexp.MustCompile(`^(!)?\s*defined\s*\(?\s*(\w+)\s*\)?$`)
)

// stripComments removes comments while keeping every line where it was. A line comment becomes
// "//"; a block comment that spans lines becomes one "//" line per line break so diagnostics still
// point at the original line numbers. Whichever comment opens first wins, so a "/*" inside a line
// comment and a "//" inside a block comment are plain comment text.
func stripComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, "//"):
			b.WriteString("//")
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return b.String()
			}
			i += end
		case strings.HasPrefix(rest, "/*"):
			comment := rest
			if end := strings.Index(rest[2:], "*/"); end >= 0 {
				comment = rest[:end+4]
			}
			i += len(comment)
			if n := strings.Count(comment, "\n"); n > 0 {
				b.WriteString(strings.Repeat("//\n", n))
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(source[i])
			i++
		}
	}
	return b.String()
}

// findCzmIdentifiers returns the distinct czm_ identifiers of source in first-seen order.
func findCzmIdentifiers(source string) []string {
	matches := czmIdentifierRegex.FindAllString(source, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// condFrame is one level of #if nesting.
type condFrame struct {
	parentActive bool
	active       bool
	taken        bool
}

// activeLines evaluates the conditional directives of a stage and reports which lines the
// GLSL compiler will see. Macros are learned from #define and #undef lines as they are
// reached, plus predefined. Conditions other than a plain defined(X) test are assumed true.
//
// Parameters:
//   - lines: the stage source split into lines
//   - predefined: macros defined before the first line
//
// Returns:
//   - []bool: true for every non-directive line inside an active region
func activeLines(lines []string, predefined ...string) []bool {
	defined := make(map[string]bool, len(predefined))
	for _, d := range predefined {
		defined[d] = true
	}
	eval := func(kw, arg string) bool {
		switch kw {
		case "ifdef":
			return defined[arg]
		case "ifndef":
			return !defined[arg]
		}
		if m := definedRegex.FindStringSubmatch(arg); m != nil {
			return defined[m[2]] != (m[1] == "!")
		}
		if n, err := strconv.Atoi(arg); err == nil {
			return n != 0
		}
		return true
	}

	out := make([]bool, len(lines))
	stack := []condFrame{}
	active := true
	for i, line := range lines {
		m := directiveRegex.FindStringSubmatch(line)
		if m == nil {
			out[i] = active
			continue
		}
		kw, arg := m[1], m[2]
		switch kw {
		case "if", "ifdef", "ifndef":
			c := active && eval(kw, arg)
			stack = append(stack, condFrame{parentActive: active, active: c, taken: c})
			active = c
		case "elif":
			if len(stack) == 0 {
				continue
			}
			f := &stack[len(stack)-1]
			f.active = f.parentActive && !f.taken && eval("if", arg)
			f.taken = f.taken || f.active
			active = f.active
		case "else":
			if len(stack) == 0 {
				continue
			}
			f := &stack[len(stack)-1]
			f.active = f.parentActive && !f.taken
			f.taken = true
			active = f.active
		case "endif":
			if len(stack) == 0 {
				continue
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case "define":
			if f := strings.FieldsFunc(arg, isMacroSeparator); active && len(f) > 0 {
				defined[f[0]] = true
			}
		case "undef":
			if active {
				delete(defined, strings.TrimSpace(arg))
			}
		}
	}
	return out
}

func isMacroSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '('
}

// blockMember is one member of a std140 uniform block.
type blockMember struct {
	Name     string
	DataType uniform.DataType
	Count    int
	Offset   int
}

// uniformBlock is a parsed std140 uniform block with computed member offsets.
type uniformBlock struct {
	Name    string
	Members []blockMember
	Size    int
}

// parseUniformBlocks extracts every std140 uniform block of source and lays out its members.
// Members whose type is not a plain scalar, vector or matrix are skipped.
func parseUniformBlocks(source string) map[string]uniformBlock {
	blocks := make(map[string]uniformBlock)
	for _, m := range uniformBlockRegex.FindAllStringSubmatch(source, -1) {
		var members []blockMember
		for _, mm := range blockMemberRegex.FindAllStringSubmatch(m[2], -1) {
			t, ok := uniform.ParseDataType(mm[1])
			if !ok {
				continue
			}
			members = append(members, blockMember{Name: mm[2], DataType: t, Count: arrayLength(mm[3])})
		}
		size := layoutStd140(members)
		blocks[m[1]] = uniformBlock{Name: m[1], Members: members, Size: size}
	}
	return blocks
}

// layoutStd140 assigns std140 offsets in place and returns the block size rounded to 16.
func layoutStd140(members []blockMember) int {
	offset := 0
	for i := range members {
		align, size := members[i].DataType.Std140Layout()
		if members[i].Count > 1 {
			align = roundUp(16, align)
			size = members[i].DataType.Std140ArrayStride() * members[i].Count
		}
		offset = roundUp(align, offset)
		members[i].Offset = offset
		offset += size
	}
	return roundUp(16, offset)
}

func roundUp(alignment, value int) int {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}

func arrayLength(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Attribute is one vertex shader input.
type Attribute struct {
	Name     string
	Type     string
	Location int
}

// parseAttributes extracts the vertex inputs of active lines in declaration order. Location
// is -1 unless the declaration carries an explicit layout(location = N).
func parseAttributes(source string) []Attribute {
	lines := strings.Split(source, "\n")
	active := activeLines(lines, "GL_FRAGMENT_PRECISION_HIGH")
	var out []Attribute
	for i, line := range lines {
		if !active[i] {
			continue
		}
		m := attributeRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		loc := -1
		if m[1] != "" {
			loc, _ = strconv.Atoi(m[1])
		}
		out = append(out, Attribute{Name: m[3], Type: m[2], Location: loc})
	}
	return out
}
