package mir

import (
	"fmt"
	"strings"
)

// Repr returns the textual representation of the bundle.
func (b *Bundle) Repr() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "bundle %s\n", b.Name)

	for _, decl := range b.Externals {
		fmt.Fprintf(&sb, "\nextern @%s: %s", decl.Name, decl.Type.Repr())
	}

	if len(b.Externals) > 0 {
		sb.WriteRune('\n')
	}

	for _, gv := range b.Globals {
		sb.WriteRune('\n')
		if gv.Public {
			sb.WriteString("pub ")
		}

		fmt.Fprintf(&sb, "static @%s: %s", gv.Name, gv.Type.Repr())
		if gv.Init != nil {
			fmt.Fprintf(&sb, " = %s", gv.Init.Repr())
		}
	}

	if len(b.Globals) > 0 {
		sb.WriteRune('\n')
	}

	for _, fn := range b.Funcs {
		sb.WriteRune('\n')
		sb.WriteString(fn.Repr())
	}

	return sb.String()
}

// Repr returns the textual representation of the function.
func (fn *Function) Repr() string {
	sb := strings.Builder{}
	if fn.Public {
		sb.WriteString("pub ")
	}

	if fn.Extern {
		sb.WriteString("extern ")
	}

	fmt.Fprintf(&sb, "func @%s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "%s: %s", param.Repr(), param.Type().Repr())
	}

	fmt.Fprintf(&sb, ") %s", fn.Signature.ReturnType.Repr())
	if fn.Extern {
		sb.WriteRune('\n')
		return sb.String()
	}

	sb.WriteString(" {\n")

	for _, local := range fn.Locals[len(fn.Params):] {
		fmt.Fprintf(&sb, "  local %s: %s\n", local.Repr(), local.Type().Repr())
	}

	for _, block := range fn.Blocks {
		fmt.Fprintf(&sb, "%s (%s):", blockName(block.Index), block.Label)
		if block.Dead {
			sb.WriteString(" ; dead")
		}

		sb.WriteRune('\n')

		for _, instr := range block.Instrs {
			fmt.Fprintf(&sb, "  %s\n", instr.Repr())
		}

		if block.Term != nil {
			fmt.Fprintf(&sb, "  %s\n", block.Term.Repr())
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
