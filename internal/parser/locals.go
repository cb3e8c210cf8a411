package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// visitStatement inspects one top-level statement for runtime code and local
// definitions. Nested structure is handled by walkDeep.
func (v *visitor) visitStatement(n *sitter.Node, topLevel bool) {
	switch n.Type() {
	case "expression_statement", "if_statement", "for_statement",
		"for_in_statement", "while_statement", "do_statement",
		"switch_statement", "try_statement", "throw_statement",
		"return_statement":
		if topLevel {
			v.hasRuntimeCode = true
		}
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			v.localDefs[v.text(name)] = true
		}
	case "class_declaration", "abstract_class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			v.localDefs[v.text(name)] = true
		}
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			v.localDefs[v.text(name)] = true
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d := n.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if nameNode := d.ChildByFieldName("name"); nameNode != nil && nameNode.Type() == "identifier" {
				v.localDefs[v.text(nameNode)] = true
			}
			if topLevel && declaratorHasSideEffects(d) {
				v.hasRuntimeCode = true
			}
		}
	}
}

// sameNode reports whether two nodes cover the same source span, which is
// enough to tell "this identifier is the declared name" apart from a usage.
func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// declaratorHasSideEffects reports whether a variable initializer runs code
// at module load (calls, new expressions, awaits).
func declaratorHasSideEffects(d *sitter.Node) bool {
	value := d.ChildByFieldName("value")
	if value == nil {
		return false
	}
	switch value.Type() {
	case "call_expression", "new_expression", "await_expression":
		return true
	}
	return false
}

// walkDeep performs the full-tree pass: identifier usages, env var accesses,
// dynamic imports, CommonJS requires, function metrics, classes, and comments
// anywhere in the file.
func (v *visitor) walkDeep(n *sitter.Node) {
	switch n.Type() {
	case "identifier":
		v.visitIdentifierUsage(n)
	case "type_identifier":
		// Type references count as usages so unused types can be told apart
		// from referenced ones.
		if p := n.Parent(); p == nil || p.ChildByFieldName("name") == nil || !sameNode(p.ChildByFieldName("name"), n) {
			v.localUsages[v.text(n)] = true
		}
	case "member_expression":
		v.visitMemberExpression(n)
	case "subscript_expression":
		v.visitSubscriptExpression(n)
	case "call_expression":
		v.visitCallExpression(n)
	case "comment":
		v.visitComment(n)
	case "class_declaration", "abstract_class_declaration", "class":
		v.visitClass(n)
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "arrow_function", "method_definition":
		v.visitFunction(n)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.walkDeep(n.NamedChild(i))
	}
}

func (v *visitor) visitIdentifierUsage(n *sitter.Node) {
	// An identifier that is the declared name of something is a definition,
	// not a usage.
	parent := n.Parent()
	if parent != nil {
		switch parent.Type() {
		case "variable_declarator", "function_declaration", "class_declaration",
			"interface_declaration", "type_alias_declaration", "enum_declaration",
			"generator_function_declaration", "abstract_class_declaration":
			if name := parent.ChildByFieldName("name"); name != nil && sameNode(name, n) {
				return
			}
		case "import_specifier", "namespace_import", "import_clause":
			return
		}
	}
	v.localUsages[v.text(n)] = true
}

// visitMemberExpression records process.env.X accesses and property usages.
func (v *visitor) visitMemberExpression(n *sitter.Node) {
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return
	}
	if obj.Type() == "member_expression" && v.text(obj) == "process.env" {
		v.envVars[v.text(prop)] = true
	}
}

// visitSubscriptExpression records process.env["X"] accesses.
func (v *visitor) visitSubscriptExpression(n *sitter.Node) {
	obj := n.ChildByFieldName("object")
	index := n.ChildByFieldName("index")
	if obj == nil || index == nil {
		return
	}
	if v.text(obj) == "process.env" && index.Type() == "string" {
		v.envVars[v.stringContent(index)] = true
	}
}

// visitCallExpression records dynamic import() and require() sources.
func (v *visitor) visitCallExpression(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return
	}

	isDynamicImport := fn.Type() == "import"
	isRequire := fn.Type() == "identifier" && v.text(fn) == "require"
	if !isDynamicImport && !isRequire {
		return
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "string" {
			continue
		}
		line, col := v.lineCol(n)
		v.imports = append(v.imports, ImportedSymbol{
			Source: v.stringContent(arg), Name: "*",
			Line: line, Column: col, Range: v.rangeOf(n),
			IsDynamic: true,
		})
		return
	}
}

// visitClass extracts the method-relationship model used by the cohesion
// detectors.
func (v *visitor) visitClass(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}

	class := ClassSymbol{Name: v.text(nameNode)}
	methodNames := map[string]bool{}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		if m.Type() != "method_definition" {
			continue
		}
		mName := ""
		if nn := m.ChildByFieldName("name"); nn != nil {
			mName = v.text(nn)
		}
		if mName == "" {
			continue
		}
		methodNames[mName] = true
		text := v.text(m)
		method := MethodSymbol{
			Name:          mName,
			IsConstructor: mName == "constructor",
			IsAccessor:    strings.HasPrefix(text, "get ") || strings.HasPrefix(text, "set "),
			UsedFields:    map[string]bool{},
			UsedMethods:   map[string]bool{},
		}
		v.collectThisAccesses(m, &method)
		class.Methods = append(class.Methods, method)
	}

	// Split this.x references into field vs method usage now that the full
	// method set is known.
	for i := range class.Methods {
		m := &class.Methods[i]
		for name := range m.UsedFields {
			if methodNames[name] {
				delete(m.UsedFields, name)
				m.UsedMethods[name] = true
			}
		}
	}

	v.classes = append(v.classes, class)
}

func (v *visitor) collectThisAccesses(n *sitter.Node, method *MethodSymbol) {
	if n.Type() == "member_expression" {
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj != nil && prop != nil && obj.Type() == "this" {
			method.UsedFields[v.text(prop)] = true
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.collectThisAccesses(n.NamedChild(i), method)
	}
}

// identifierSet collects every identifier mentioned under n.
func (v *visitor) identifierSet(n *sitter.Node) map[string]bool {
	set := map[string]bool{}
	v.collectIdentifiers(n, set, "identifier")
	return set
}

// typeIdentifierSet collects type references under n, for interfaces and
// type aliases.
func (v *visitor) typeIdentifierSet(n *sitter.Node) map[string]bool {
	set := map[string]bool{}
	v.collectIdentifiers(n, set, "type_identifier")
	v.collectIdentifiers(n, set, "identifier")
	return set
}

func (v *visitor) collectIdentifiers(n *sitter.Node, set map[string]bool, nodeType string) {
	if n.Type() == nodeType {
		set[v.text(n)] = true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.collectIdentifiers(n.NamedChild(i), set, nodeType)
	}
}
