package syntax

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/report"
	"github.com/redgush/flycatcher/syntax/sexpr"
)

// FileExt is the extension of syntax tree files.
const FileExt = ".fst"

// ReadFile reads the syntax tree stored at absPath.  Malformed trees are
// returned as a *report.LocalCompileError so their position can be reported.
func ReadFile(absPath, reprPath string) (*File, error) {
	buff, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read syntax tree `%s`", reprPath)
	}

	return ReadString(string(buff), absPath, reprPath)
}

// ReadString decodes a syntax tree from its S-expression text.
func ReadString(src, absPath, reprPath string) (f *File, err error) {
	root, err := sexpr.ParseOne(src)
	if err != nil {
		if serr, ok := err.(*sexpr.SyntaxError); ok {
			return nil, report.Raise(serr.Span, report.CodeBadTree, "%s", serr.Message)
		}

		return nil, err
	}

	defer func() {
		if x := recover(); x != nil {
			if cerr, ok := x.(*report.LocalCompileError); ok {
				f = nil
				err = cerr
			} else {
				panic(x)
			}
		}
	}()

	d := decoder{}
	f = d.decodeFile(root)
	f.AbsPath = absPath
	f.ReprPath = reprPath
	return f, nil
}

// decoder converts S-expression data into syntax tree nodes.
type decoder struct{}

// reject aborts decoding with an error on the given node.
func (d *decoder) reject(n *sexpr.Node, msg string, args ...interface{}) {
	panic(report.Raise(n.Span, report.CodeBadTree, msg, args...))
}

// want asserts that n is a list headed by the given keyword with a number of
// arguments in [min, max].  A max of -1 means unbounded.
func (d *decoder) want(n *sexpr.Node, head string, min, max int) []*sexpr.Node {
	if n.Head() != head {
		d.reject(n, "expected `(%s ...)` but got `%s`", head, n)
	}

	args := n.Args()
	if len(args) < min || (max >= 0 && len(args) > max) {
		d.reject(n, "malformed `%s`", head)
	}

	return args
}

func (d *decoder) symbol(n *sexpr.Node) string {
	if n.Kind != sexpr.KindSymbol {
		d.reject(n, "expected a name but got `%s`", n)
	}

	return n.Text
}

func (d *decoder) ident(n *sexpr.Node) *Identifier {
	return &Identifier{ExprBase: ExprBase{NewNodeBase(n.Span)}, Name: d.symbol(n)}
}

// isLabel reports whether n is a `:label` symbol.
func isLabel(n *sexpr.Node) bool {
	return n.Kind == sexpr.KindSymbol && strings.HasPrefix(n.Text, ":") && len(n.Text) > 1
}

// -----------------------------------------------------------------------------

func (d *decoder) decodeFile(n *sexpr.Node) *File {
	args := d.want(n, "module", 1, -1)

	f := &File{NodeBase: NewNodeBase(n.Span), Name: d.symbol(args[0])}
	for _, item := range args[1:] {
		if item.Head() == "import" {
			f.Imports = append(f.Imports, d.decodeImport(item))
		} else {
			f.Defs = append(f.Defs, d.decodeDef(item, false))
		}
	}

	return f
}

func (d *decoder) decodeImport(n *sexpr.Node) *Import {
	args := d.want(n, "import", 1, 2)
	if args[0].Kind != sexpr.KindString {
		d.reject(args[0], "import path must be a string")
	}

	imp := &Import{NodeBase: NewNodeBase(n.Span), Path: args[0].Text}
	if len(args) == 2 {
		switch args[1].Head() {
		case "as":
			imp.Alias = d.symbol(d.want(args[1], "as", 1, 1)[0])
		case "names":
			for _, name := range d.want(args[1], "names", 1, -1) {
				imp.Names = append(imp.Names, d.ident(name))
			}
		default:
			d.reject(args[1], "expected `as` or `names`")
		}
	}

	return imp
}

func (d *decoder) decodeDef(n *sexpr.Node, public bool) Def {
	switch n.Head() {
	case "pub":
		return d.decodeDef(d.want(n, "pub", 1, 1)[0], true)
	case "func":
		args := d.want(n, "func", 4, 4)
		return &FuncDef{
			DefBase:    d.defBase(n, args[0], public),
			Params:     d.decodeParams(args[1]),
			ReturnType: d.decodeRetType(args[2]),
			Body:       d.decodeBlock(args[3]),
		}
	case "extern":
		args := d.want(n, "extern", 3, 3)
		return &FuncDef{
			DefBase:    d.defBase(n, args[0], public),
			Params:     d.decodeParams(args[1]),
			ReturnType: d.decodeRetType(args[2]),
			Extern:     true,
		}
	case "type":
		args := d.want(n, "type", 2, 2)
		return &TypeDef{DefBase: d.defBase(n, args[0], public), Type: d.decodeType(args[1])}
	case "static":
		args := d.want(n, "static", 2, 3)
		sd := &StaticDef{DefBase: d.defBase(n, args[0], public)}
		if !(args[1].Kind == sexpr.KindSymbol && args[1].Text == "_") {
			sd.Type = d.decodeType(args[1])
		}

		if len(args) == 3 {
			sd.Init = d.decodeExpr(args[2])
		} else if sd.Type == nil {
			d.reject(n, "static variable needs a type or an initializer")
		}

		return sd
	case "coerce":
		args := d.want(n, "coerce", 3, 3)
		return &CoerceDef{
			DefBase: DefBase{NodeBase: NewNodeBase(n.Span), Public: public},
			From:    d.decodeType(args[0]),
			To:      d.decodeType(args[1]),
			Via:     d.ident(args[2]),
		}
	case "construct":
		return d.decodeConstruct(n, public)
	default:
		d.reject(n, "expected a definition but got `%s`", n)
		return nil
	}
}

func (d *decoder) defBase(n, name *sexpr.Node, public bool) DefBase {
	return DefBase{NodeBase: NewNodeBase(n.Span), Name: d.ident(name), Public: public}
}

func (d *decoder) decodeParams(n *sexpr.Node) []*Param {
	if !n.IsList() {
		d.reject(n, "expected a parameter list")
	}

	var params []*Param
	for _, item := range n.Items {
		if item.Kind == sexpr.KindSymbol {
			// a bare name is a dynamic parameter
			params = append(params, &Param{NodeBase: NewNodeBase(item.Span), Name: d.ident(item)})
		} else if item.IsList() && len(item.Items) == 2 {
			params = append(params, &Param{
				NodeBase: NewNodeBase(item.Span),
				Name:     d.ident(item.Items[0]),
				Type:     d.decodeType(item.Items[1]),
			})
		} else {
			d.reject(item, "malformed parameter")
		}
	}

	return params
}

func (d *decoder) decodeRetType(n *sexpr.Node) TypeExpr {
	if n.Kind == sexpr.KindSymbol && n.Text == "void" {
		return nil
	}

	return d.decodeType(n)
}

func (d *decoder) decodeConstruct(n *sexpr.Node, public bool) *ConstructDef {
	args := d.want(n, "construct", 2, -1)

	cd := &ConstructDef{
		DefBase: d.defBase(n, args[1], public),
		Kind:    d.symbol(args[0]),
	}

	for _, member := range args[2:] {
		switch member.Head() {
		case "prop":
			margs := d.want(member, "prop", 2, 3)
			prop := &Property{
				NodeBase: NewNodeBase(member.Span),
				Name:     d.ident(margs[0]),
				Type:     d.decodeType(margs[1]),
			}

			if len(margs) == 3 {
				prop.Default = d.decodeExpr(margs[2])
			}

			cd.Props = append(cd.Props, prop)
		case "init":
			if cd.Init != nil {
				d.reject(member, "construct has multiple initializers")
			}

			margs := d.want(member, "init", 2, 2)
			cd.Init = &FuncDef{
				DefBase: DefBase{NodeBase: NewNodeBase(member.Span), Name: cd.Name, Public: public},
				Params:  d.decodeParams(margs[0]),
				Body:    d.decodeBlock(margs[1]),
			}
		case "method":
			margs := d.want(member, "method", 4, 4)
			cd.Methods = append(cd.Methods, &FuncDef{
				DefBase:    d.defBase(member, margs[0], public),
				Params:     d.decodeParams(margs[1]),
				ReturnType: d.decodeRetType(margs[2]),
				Body:       d.decodeBlock(margs[3]),
			})
		default:
			d.reject(member, "expected `prop`, `init` or `method`")
		}
	}

	return cd
}

// -----------------------------------------------------------------------------

func (d *decoder) decodeType(n *sexpr.Node) TypeExpr {
	base := TypeExprBase{NewNodeBase(n.Span)}

	if n.Kind == sexpr.KindSymbol {
		if n.Text == "dyn" {
			return &DynTypeExpr{TypeExprBase: base}
		}

		if dot := strings.IndexByte(n.Text, '.'); dot > 0 && dot < len(n.Text)-1 {
			return &TypeName{TypeExprBase: base, Module: n.Text[:dot], Name: n.Text[dot+1:]}
		}

		return &TypeName{TypeExprBase: base, Name: n.Text}
	}

	switch n.Head() {
	case "struct":
		st := &StructTypeExpr{TypeExprBase: base}
		for _, field := range n.Args() {
			if !field.IsList() || len(field.Items) != 2 {
				d.reject(field, "malformed struct field")
			}

			st.Fields = append(st.Fields, &FieldType{
				NodeBase: NewNodeBase(field.Span),
				Name:     d.ident(field.Items[0]),
				Type:     d.decodeType(field.Items[1]),
			})
		}

		return st
	case "fn":
		args := d.want(n, "fn", 2, 2)
		if !args[0].IsList() {
			d.reject(args[0], "expected a parameter type list")
		}

		ft := &FuncTypeExpr{TypeExprBase: base, ReturnType: d.decodeRetType(args[1])}
		for _, param := range args[0].Items {
			ft.Params = append(ft.Params, d.decodeType(param))
		}

		return ft
	}

	d.reject(n, "expected a type but got `%s`", n)
	return nil
}

// -----------------------------------------------------------------------------

func (d *decoder) decodeBlock(n *sexpr.Node) *Block {
	args := d.want(n, "block", 0, -1)

	block := &Block{StmtBase: StmtBase{NewNodeBase(n.Span)}}
	for _, item := range args {
		block.Stmts = append(block.Stmts, d.decodeStmt(item))
	}

	return block
}

func (d *decoder) decodeStmt(n *sexpr.Node) Stmt {
	base := StmtBase{NewNodeBase(n.Span)}

	switch n.Head() {
	case "block":
		return d.decodeBlock(n)
	case "let":
		args := d.want(n, "let", 2, 3)
		vd := &VarDecl{StmtBase: base, Name: d.ident(args[0])}
		if !(args[1].Kind == sexpr.KindSymbol && args[1].Text == "_") {
			vd.Type = d.decodeType(args[1])
		}

		if len(args) == 3 {
			vd.Init = d.decodeExpr(args[2])
		} else if vd.Type == nil {
			d.reject(n, "variable needs a type or an initializer")
		}

		return vd
	case "set":
		args := d.want(n, "set", 2, 2)
		return &Assign{StmtBase: base, Target: d.decodeExpr(args[0]), Value: d.decodeExpr(args[1])}
	case "if":
		args := d.want(n, "if", 2, -1)
		ifStmt := &IfStmt{StmtBase: base}
		ifStmt.CondBranches = append(ifStmt.CondBranches, &CondBranch{
			NodeBase: NewNodeBase(n.Span),
			Cond:     d.decodeExpr(args[0]),
			Body:     d.decodeBlock(args[1]),
		})

		for _, branch := range args[2:] {
			switch branch.Head() {
			case "elif":
				bargs := d.want(branch, "elif", 2, 2)
				ifStmt.CondBranches = append(ifStmt.CondBranches, &CondBranch{
					NodeBase: NewNodeBase(branch.Span),
					Cond:     d.decodeExpr(bargs[0]),
					Body:     d.decodeBlock(bargs[1]),
				})
			case "else":
				if ifStmt.ElseBranch != nil {
					d.reject(branch, "if statement has multiple else branches")
				}

				ifStmt.ElseBranch = d.decodeBlock(d.want(branch, "else", 1, 1)[0])
			default:
				d.reject(branch, "expected `elif` or `else`")
			}
		}

		return ifStmt
	case "while":
		args := d.want(n, "while", 2, 3)
		ws := &WhileStmt{StmtBase: base}
		if len(args) == 3 {
			if !isLabel(args[0]) {
				d.reject(args[0], "expected a loop label")
			}

			ws.Label = args[0].Text[1:]
			args = args[1:]
		}

		ws.Cond = d.decodeExpr(args[0])
		ws.Body = d.decodeBlock(args[1])
		return ws
	case "return":
		args := d.want(n, "return", 0, 1)
		rs := &ReturnStmt{StmtBase: base}
		if len(args) == 1 {
			rs.Value = d.decodeExpr(args[0])
		}

		return rs
	case "break", "continue":
		args := d.want(n, n.Head(), 0, 1)
		label := ""
		if len(args) == 1 {
			if !isLabel(args[0]) {
				d.reject(args[0], "expected a loop label")
			}

			label = args[0].Text[1:]
		}

		if n.Head() == "break" {
			return &BreakStmt{StmtBase: base, Label: label}
		}

		return &ContinueStmt{StmtBase: base, Label: label}
	case "match":
		args := d.want(n, "match", 2, -1)
		ms := &MatchStmt{StmtBase: base, Subject: d.decodeExpr(args[0])}
		for _, arm := range args[1:] {
			switch arm.Head() {
			case "arm":
				aargs := d.want(arm, "arm", 3, 3)
				ms.Arms = append(ms.Arms, &MatchArm{
					NodeBase: NewNodeBase(arm.Span),
					Name:     d.ident(aargs[0]),
					Type:     d.decodeType(aargs[1]),
					Body:     d.decodeBlock(aargs[2]),
				})
			case "else":
				if ms.ElseBranch != nil {
					d.reject(arm, "match statement has multiple else branches")
				}

				ms.ElseBranch = d.decodeBlock(d.want(arm, "else", 1, 1)[0])
			default:
				d.reject(arm, "expected `arm` or `else`")
			}
		}

		return ms
	}

	return &ExprStmt{StmtBase: base, Expr: d.decodeExpr(n)}
}

// -----------------------------------------------------------------------------

// binaryOps maps operator spellings to binary operator kinds.
var binaryOps = map[string]int{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"==": OpEq,
	"!=": OpNeq,
	"<":  OpLt,
	">":  OpGt,
	"<=": OpLtEq,
	">=": OpGtEq,
	"&&": OpLAnd,
	"||": OpLOr,
}

func (d *decoder) decodeExpr(n *sexpr.Node) Expr {
	base := ExprBase{NewNodeBase(n.Span)}

	switch n.Kind {
	case sexpr.KindInt:
		v, err := strconv.ParseUint(n.Text, 0, 64)
		if err != nil {
			d.reject(n, "invalid integer literal `%s`", n.Text)
		}

		return &IntLit{ExprBase: base, Value: v}
	case sexpr.KindFloat:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			d.reject(n, "invalid float literal `%s`", n.Text)
		}

		return &FloatLit{ExprBase: base, Value: v}
	case sexpr.KindString:
		return &StringLit{ExprBase: base, Value: n.Text}
	case sexpr.KindSymbol:
		switch n.Text {
		case "true":
			return &BoolLit{ExprBase: base, Value: true}
		case "false":
			return &BoolLit{ExprBase: base, Value: false}
		}

		return d.decodeDottedName(n)
	}

	if len(n.Items) == 0 {
		d.reject(n, "empty expression")
	}

	head := n.Head()
	switch head {
	case "call":
		args := d.want(n, "call", 1, -1)
		return d.makeCall(n, d.decodeExpr(args[0]), args[1:])
	case "struct":
		sl := &StructLit{ExprBase: base}
		for _, field := range n.Args() {
			if !field.IsList() || len(field.Items) != 2 {
				d.reject(field, "malformed struct literal field")
			}

			sl.Fields = append(sl.Fields, &FieldInit{
				NodeBase: NewNodeBase(field.Span),
				Name:     d.ident(field.Items[0]),
				Value:    d.decodeExpr(field.Items[1]),
			})
		}

		return sl
	case ".":
		args := d.want(n, ".", 2, 2)
		return &Dot{ExprBase: base, Root: d.decodeExpr(args[0]), Field: d.ident(args[1])}
	case "!":
		args := d.want(n, "!", 1, 1)
		return &Unary{ExprBase: base, Op: OpNot, Operand: d.decodeExpr(args[0])}
	case "-":
		if len(n.Args()) == 1 {
			return &Unary{ExprBase: base, Op: OpNeg, Operand: d.decodeExpr(n.Args()[0])}
		}
	}

	if op, ok := binaryOps[head]; ok {
		args := d.want(n, head, 2, 2)
		return &Binary{ExprBase: base, Op: op, Lhs: d.decodeExpr(args[0]), Rhs: d.decodeExpr(args[1])}
	}

	// any other list is a call: `(f a b)`
	return d.makeCall(n, d.decodeExpr(n.Items[0]), n.Items[1:])
}

func (d *decoder) makeCall(n *sexpr.Node, fn Expr, args []*sexpr.Node) *Call {
	call := &Call{ExprBase: ExprBase{NewNodeBase(n.Span)}, Func: fn}
	for _, arg := range args {
		call.Args = append(call.Args, d.decodeExpr(arg))
	}

	return call
}

// decodeDottedName decodes a symbol such as `geo.origin.x` into a chain of
// dot expressions.
func (d *decoder) decodeDottedName(n *sexpr.Node) Expr {
	parts := strings.Split(n.Text, ".")
	for _, part := range parts {
		if part == "" {
			d.reject(n, "malformed name `%s`", n.Text)
		}
	}

	var expr Expr = &Identifier{ExprBase: ExprBase{NewNodeBase(n.Span)}, Name: parts[0]}
	for _, part := range parts[1:] {
		expr = &Dot{
			ExprBase: ExprBase{NewNodeBase(n.Span)},
			Root:     expr,
			Field:    &Identifier{ExprBase: ExprBase{NewNodeBase(n.Span)}, Name: part},
		}
	}

	return expr
}
