package shader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

// looseUniform is a single-value uniform declared outside any block.
type looseUniform struct {
	name     string
	dataType uniform.DataType
	count    int
	line     int
}

// packUniforms moves the active loose uniforms of both stages into one std140 block,
// czm_DrawUniforms, declared identically in each stage that had any. The block replaces the
// stage's first declaration and the remaining declaration lines are blanked, so line numbers
// survive and every use still follows the declaration. Sampler uniforms stay loose.
//
// Panics with a *common.PreconditionError when the stages disagree on a uniform's type.
//
// Parameters:
//   - vs: the combined vertex stage
//   - fs: the combined fragment stage
//
// Returns:
//   - string: the rewritten vertex stage
//   - string: the rewritten fragment stage
//   - []blockMember: the block members with std140 offsets
//   - int: the block size
func packUniforms(vs, fs string) (string, string, []blockMember, int) {
	vsLines, vsDecls := collectLooseUniforms(vs)
	fsLines, fsDecls := collectLooseUniforms(fs)

	byName := map[string]looseUniform{}
	for _, decls := range [][]looseUniform{vsDecls, fsDecls} {
		for _, u := range decls {
			prev, ok := byName[u.name]
			if ok && (prev.dataType != u.dataType || prev.count != u.count) {
				panic(common.NewPreconditionError("shader: uniform %s is declared as %s and %s", u.name, declType(prev), declType(u)))
			}
			byName[u.name] = u
		}
	}
	if len(byName) == 0 {
		return vs, fs, nil, 0
	}

	members := make([]blockMember, 0, len(byName))
	for _, u := range byName {
		members = append(members, blockMember{Name: u.name, DataType: u.dataType, Count: u.count})
	}
	// largest alignment first keeps padding low
	sort.Slice(members, func(i, j int) bool {
		ai, _ := members[i].DataType.Std140Layout()
		aj, _ := members[j].DataType.Std140Layout()
		if ai != aj {
			return ai > aj
		}
		return members[i].Name < members[j].Name
	})
	size := layoutStd140(members)
	block := drawBlockDeclaration(members)

	return insertBlock(vsLines, vsDecls, block), insertBlock(fsLines, fsDecls, block), members, size
}

// collectLooseUniforms returns the stage lines and its active loose declarations. The
// declaration lines are blanked in the returned slice.
func collectLooseUniforms(source string) ([]string, []looseUniform) {
	lines := strings.Split(source, "\n")
	active := activeLines(lines, "GL_FRAGMENT_PRECISION_HIGH")
	var decls []looseUniform
	for i, line := range lines {
		if !active[i] {
			continue
		}
		m := looseUniformRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		t, ok := uniform.ParseDataType(m[1])
		if !ok {
			continue
		}
		decls = append(decls, looseUniform{name: m[2], dataType: t, count: arrayLength(m[3]), line: i})
		lines[i] = ""
	}
	return lines, decls
}

func insertBlock(lines []string, decls []looseUniform, block string) string {
	if len(decls) == 0 {
		return strings.Join(lines, "\n")
	}
	lines[decls[0].line] = block
	return strings.Join(lines, "\n")
}

func drawBlockDeclaration(members []blockMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, "layout(std140) uniform %s {", uniform.DrawUniformsBlock)
	for _, m := range members {
		b.WriteByte(' ')
		if m.DataType != uniform.DataTypeBool {
			b.WriteString("highp ")
		}
		b.WriteString(m.DataType.String())
		b.WriteByte(' ')
		b.WriteString(m.Name)
		if m.Count > 1 {
			fmt.Fprintf(&b, "[%d]", m.Count)
		}
		b.WriteByte(';')
	}
	b.WriteString(" };")
	return b.String()
}

func declType(u looseUniform) string {
	if u.count > 1 {
		return fmt.Sprintf("%s[%d]", u.dataType, u.count)
	}
	return u.dataType.String()
}
