package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// primitiveTypeNames are the parameter types counted by the primitive
// obsession detector: the six language primitives plus any/unknown.
var primitiveTypeNames = map[string]bool{
	"string":    true,
	"number":    true,
	"boolean":   true,
	"bigint":    true,
	"symbol":    true,
	"undefined": true,
	"any":       true,
	"unknown":   true,
}

// visitFunction computes the metric model for one function-like node.
func (v *visitor) visitFunction(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}

	name := v.functionName(n)
	params, primitives := v.countParams(n)

	line, _ := v.lineCol(n)
	fc := FunctionComplexity{
		Name:                 name,
		Line:                 line,
		Range:                v.rangeOf(n),
		ParamCount:           params,
		PrimitiveParams:      primitives,
		IsConstructor:        name == "constructor",
		CyclomaticComplexity: 1,
	}

	v.measure(body, &fc, 0)
	v.functions = append(v.functions, fc)
}

// functionName resolves a display name for anonymous function expressions by
// looking at the declarator or property they are assigned to.
func (v *visitor) functionName(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return v.text(name)
	}
	parent := n.Parent()
	for parent != nil {
		switch parent.Type() {
		case "variable_declarator", "pair", "public_field_definition":
			if name := parent.ChildByFieldName("name"); name != nil {
				return v.text(name)
			}
		case "assignment_expression":
			if left := parent.ChildByFieldName("left"); left != nil {
				return v.text(left)
			}
		case "statement_block", "program":
			return "<anonymous>"
		}
		parent = parent.Parent()
	}
	return "<anonymous>"
}

func (v *visitor) countParams(n *sitter.Node) (total, primitives int) {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		// Arrow functions with a single bare parameter.
		if p := n.ChildByFieldName("parameter"); p != nil {
			return 1, 0
		}
		return 0, 0
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter", "identifier",
			"rest_pattern", "object_pattern", "array_pattern", "assignment_pattern":
			total++
			if v.isPrimitiveParam(p) {
				primitives++
			}
		}
	}
	return total, primitives
}

func (v *visitor) isPrimitiveParam(p *sitter.Node) bool {
	for i := 0; i < int(p.NamedChildCount()); i++ {
		c := p.NamedChild(i)
		if c.Type() != "type_annotation" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			t := c.NamedChild(j)
			if t.Type() == "predefined_type" || t.Type() == "type_identifier" {
				return primitiveTypeNames[v.text(t)]
			}
		}
	}
	return false
}

// measure walks a function body accumulating cyclomatic complexity (decision
// points, base 1), cognitive complexity (decision weight 1 + nesting, else
// and labeled jumps weight 1) and the maximum statement nesting depth.
// Nested function bodies are measured separately, not here.
func (v *visitor) measure(n *sitter.Node, fc *FunctionComplexity, depth int) {
	childDepth := depth

	switch n.Type() {
	case "if_statement":
		fc.CyclomaticComplexity++
		fc.CognitiveComplexity += 1 + depth
		v.measureIf(n, fc, depth)
		return
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		fc.CyclomaticComplexity++
		fc.CognitiveComplexity += 1 + depth
		childDepth = depth + 1
	case "switch_case":
		fc.CyclomaticComplexity++
	case "switch_statement":
		fc.CognitiveComplexity += 1 + depth
		childDepth = depth + 1
	case "catch_clause":
		fc.CyclomaticComplexity++
		fc.CognitiveComplexity += 1 + depth
		childDepth = depth + 1
	case "ternary_expression":
		fc.CyclomaticComplexity++
		fc.CognitiveComplexity += 1 + depth
	case "binary_expression":
		if op := v.binaryOperator(n); op == "&&" || op == "||" || op == "??" {
			fc.CyclomaticComplexity++
			fc.CognitiveComplexity++
		}
	case "break_statement", "continue_statement":
		// Labeled jumps break the linear reading flow.
		if n.NamedChildCount() > 0 {
			fc.CognitiveComplexity++
		}
	case "statement_block":
		if depth > fc.MaxDepth {
			fc.MaxDepth = depth
		}
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "arrow_function", "method_definition":
		// Separate function: measured by its own visit.
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.measure(n.NamedChild(i), fc, childDepth)
	}
}

// measureIf handles if/else-if/else chains: the else-if arm costs 1 instead
// of restarting the nesting penalty.
func (v *visitor) measureIf(n *sitter.Node, fc *FunctionComplexity, depth int) {
	if cond := n.ChildByFieldName("condition"); cond != nil {
		v.measure(cond, fc, depth)
	}
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		v.measure(cons, fc, depth+1)
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		// else_clause wraps either a statement_block or a nested if.
		fc.CognitiveComplexity++
		for i := 0; i < int(alt.NamedChildCount()); i++ {
			c := alt.NamedChild(i)
			if c.Type() == "if_statement" {
				fc.CyclomaticComplexity++
				v.measureIf(c, fc, depth)
			} else {
				v.measure(c, fc, depth+1)
			}
		}
	}
}

func (v *visitor) binaryOperator(n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() {
			return v.text(c)
		}
	}
	return ""
}
