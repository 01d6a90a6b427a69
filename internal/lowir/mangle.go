package lowir

import (
	"fmt"
	"strings"

	"github.com/anzenlang/anzenc/internal/types"
)

// Mangle encodes a type into the compact alphabet the linker's symbol names
// use: a/n/b/i/f/s for the six builtins, N<len><name> for a nominal type,
// F<params>2<codomain> for a function type (each labeled parameter
// preceded by its label's length, unlabeled parameters marked "_").
func Mangle(t types.Type) string {
	switch v := t.(type) {
	case *types.BuiltinType:
		switch v.Name {
		case types.Anything:
			return "a"
		case types.Nothing:
			return "n"
		case types.Bool:
			return "b"
		case types.Int:
			return "i"
		case types.Float:
			return "f"
		case types.String:
			return "s"
		}
		return "N" + mangleName(v.Name)
	case *types.NominalType:
		return "N" + mangleName(v.Name)
	case *types.FuncType:
		var sb strings.Builder
		sb.WriteString("F")
		for _, p := range v.Domain {
			if p.Label == "" {
				sb.WriteString("_")
			} else {
				sb.WriteString(mangleName(p.Label))
			}
			sb.WriteString(Mangle(p.Type.Bare))
		}
		sb.WriteString("2")
		sb.WriteString(Mangle(v.Codomain.Bare))
		return sb.String()
	case *types.TypeVar:
		return fmt.Sprintf("v%d", v.ID)
	case *types.Placeholder:
		return "P" + mangleName(v.Name)
	case *types.BoundGeneric:
		var sb strings.Builder
		sb.WriteString(Mangle(v.Base))
		for _, b := range v.Bindings {
			sb.WriteString(Mangle(b.Type))
		}
		return sb.String()
	default:
		return "x"
	}
}

func mangleName(name string) string {
	return fmt.Sprintf("%d%s", len(name), name)
}

// MangleSymbol builds the global symbol name for a declaration: the scope
// names the caller passes (the lowering passes the enclosing struct/union
// path, then the declaration's own name; no module name) joined with the
// mangled alphabet, followed by the mangled type.
func MangleSymbol(scopeNames []string, t types.Type) string {
	var sb strings.Builder
	for _, n := range scopeNames {
		sb.WriteString(mangleName(n))
	}
	sb.WriteString(Mangle(t))
	return sb.String()
}
