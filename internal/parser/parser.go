// Package parser turns TypeScript/JavaScript sources into the symbol and
// complexity model consumed by the analysis pipeline. It walks the
// tree-sitter CST; the emitted ParsedFile is AST-library agnostic.
package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/archlint/archlint/internal/archerr"
)

// Parser parses source files into ParsedFile models. Each Parse call creates
// its own tree-sitter parser, so a Parser is safe for concurrent use.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) (*ParsedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindIo, "read source file", err)
	}
	return p.Parse(content, path)
}

// Parse parses content as the language implied by path's extension.
func (p *Parser) Parse(content []byte, path string) (*ParsedFile, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(languageFor(path))

	tree, err := ts.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindParse, "parse "+filepath.Base(path), err)
	}
	defer tree.Close()

	v := newVisitor(content)
	v.walkProgram(tree.RootNode())

	// Exported names are not local definitions.
	for name := range v.exports {
		delete(v.localDefs, name)
	}

	return &ParsedFile{
		Symbols: FileSymbols{
			Imports:          v.imports,
			Exports:          v.exportList,
			Classes:          v.classes,
			LocalDefinitions: v.localDefs,
			LocalUsages:      v.localUsages,
			EnvVars:          v.envVars,
			HasRuntimeCode:   v.hasRuntimeCode,
		},
		Functions:    v.functions,
		Lines:        v.lines.LineCount(),
		IgnoredLines: v.ignoredLines,
	}, nil
}

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	case ".jsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// visitor accumulates the symbol model while walking the CST.
type visitor struct {
	src   []byte
	lines *LineIndex

	imports     []ImportedSymbol
	exportList  []ExportedSymbol
	exports     map[string]bool
	classes     []ClassSymbol
	functions   []FunctionComplexity
	localDefs   map[string]bool
	localUsages map[string]bool
	envVars     map[string]bool

	hasRuntimeCode bool
	ignoredLines   map[int][]string
}

func newVisitor(src []byte) *visitor {
	return &visitor{
		src:         src,
		lines:       NewLineIndex(src),
		exports:     map[string]bool{},
		localDefs:   map[string]bool{},
		localUsages: map[string]bool{},
		envVars:     map[string]bool{},
	}
}

func (v *visitor) text(n *sitter.Node) string {
	return n.Content(v.src)
}

func (v *visitor) rangeOf(n *sitter.Node) *CodeRange {
	return &CodeRange{
		StartLine:   int(n.StartPoint().Row) + 1,
		StartColumn: int(n.StartPoint().Column) + 1,
		EndLine:     int(n.EndPoint().Row) + 1,
		EndColumn:   int(n.EndPoint().Column) + 1,
	}
}

func (v *visitor) lineCol(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.StartPoint().Column) + 1
}

func (v *visitor) walkProgram(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			v.visitImport(child)
		case "export_statement":
			v.visitExport(child)
		case "comment":
			// Handled by the deep pass.
		default:
			v.visitStatement(child, true)
		}
	}
	// Deep passes over the whole tree: usages, env vars, dynamic imports,
	// CommonJS requires, functions, classes, nested comments.
	v.walkDeep(root)
}

// stringContent strips quotes from a string literal node.
func (v *visitor) stringContent(n *sitter.Node) string {
	s := v.text(n)
	return strings.Trim(s, "'\"`")
}

func (v *visitor) visitImport(n *sitter.Node) {
	var source string
	typeOnly := false
	var clause *sitter.Node

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "string":
			source = v.stringContent(c)
		case "import_clause":
			clause = c
		case "type":
			typeOnly = true
		}
	}
	if source == "" {
		return
	}

	line, col := v.lineCol(n)
	rng := v.rangeOf(n)

	if clause == nil {
		// Bare side-effect import.
		v.imports = append(v.imports, ImportedSymbol{
			Source: source, Name: "*", Line: line, Column: col, Range: rng,
			IsTypeOnly: typeOnly,
		})
		return
	}

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			// Default import.
			v.imports = append(v.imports, ImportedSymbol{
				Source: source, Name: "default", Alias: v.text(c),
				Line: line, Column: col, Range: rng, IsTypeOnly: typeOnly,
			})
		case "namespace_import":
			alias := ""
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if c.NamedChild(j).Type() == "identifier" {
					alias = v.text(c.NamedChild(j))
				}
			}
			v.imports = append(v.imports, ImportedSymbol{
				Source: source, Name: "*", Alias: alias,
				Line: line, Column: col, Range: rng, IsTypeOnly: typeOnly,
			})
		case "named_imports":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				spec := c.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				imp := ImportedSymbol{
					Source: source, Line: line, Column: col, Range: rng,
					IsTypeOnly: typeOnly,
				}
				if name := spec.ChildByFieldName("name"); name != nil {
					imp.Name = v.text(name)
				}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					imp.Alias = v.text(alias)
				}
				// Per-specifier `import { type X }`.
				if strings.HasPrefix(v.text(spec), "type ") {
					imp.IsTypeOnly = true
				}
				if imp.Name != "" {
					v.imports = append(v.imports, imp)
				}
			}
		}
	}
}

func (v *visitor) visitExport(n *sitter.Node) {
	var source string
	isDefault := false
	typeOnly := false

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "string":
			source = v.stringContent(c)
		case "default":
			isDefault = true
		case "type":
			typeOnly = true
		}
	}

	line, _ := v.lineCol(n)
	rng := v.rangeOf(n)

	if source != "" {
		v.visitReexport(n, source, line, rng, typeOnly)
		return
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		v.visitExportedDeclaration(decl, isDefault, line, rng)
		return
	}

	// export { a, b as c } without source.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			spec := c.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := ""
			if nn := spec.ChildByFieldName("name"); nn != nil {
				name = v.text(nn)
			}
			exported := name
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = v.text(alias)
			}
			if exported == "" {
				continue
			}
			v.addExport(ExportedSymbol{
				Name: exported, Kind: KindUnknown, Line: line, Range: rng,
				UsedSymbols: map[string]bool{name: true},
			})
		}
		return
	}

	if isDefault {
		// export default <expression>.
		v.addExport(ExportedSymbol{
			Name: "default", Kind: KindUnknown, IsDefault: true,
			Line: line, Range: rng,
		})
		v.hasRuntimeCode = true
	}
}

func (v *visitor) visitReexport(n *sitter.Node, source string, line int, rng *CodeRange, typeOnly bool) {
	// export * from './x' or export { a } from './x'.
	hasClause := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "export_clause" {
			continue
		}
		hasClause = true
		for j := 0; j < int(c.NamedChildCount()); j++ {
			spec := c.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := ""
			if nn := spec.ChildByFieldName("name"); nn != nil {
				name = v.text(nn)
			}
			exported := name
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = v.text(alias)
			}
			if exported == "" {
				continue
			}
			v.addExport(ExportedSymbol{
				Name: exported, Kind: KindReexport, IsReexport: true,
				Source: source, Line: line, Range: rng,
			})
			v.imports = append(v.imports, ImportedSymbol{
				Source: source, Name: name, Line: line, Range: rng,
				IsReexport: true, IsTypeOnly: typeOnly,
			})
		}
	}
	if !hasClause {
		v.addExport(ExportedSymbol{
			Name: "*", Kind: KindReexport, IsReexport: true,
			Source: source, Line: line, Range: rng,
		})
		v.imports = append(v.imports, ImportedSymbol{
			Source: source, Name: "*", Line: line, Range: rng,
			IsReexport: true, IsTypeOnly: typeOnly,
		})
	}
}

func (v *visitor) visitExportedDeclaration(decl *sitter.Node, isDefault bool, line int, rng *CodeRange) {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		name := v.namedOr(decl, "default")
		v.addExport(ExportedSymbol{
			Name: name, Kind: KindFunction, IsDefault: isDefault,
			Line: line, Range: rng, UsedSymbols: v.identifierSet(decl),
		})
	case "class_declaration", "abstract_class_declaration":
		name := v.namedOr(decl, "default")
		v.addExport(ExportedSymbol{
			Name: name, Kind: KindClass, IsDefault: isDefault,
			Line: line, Range: rng, UsedSymbols: v.identifierSet(decl),
		})
	case "interface_declaration":
		v.addExport(ExportedSymbol{
			Name: v.namedOr(decl, "default"), Kind: KindInterface,
			Line: line, Range: rng, UsedSymbols: v.typeIdentifierSet(decl),
		})
	case "type_alias_declaration":
		v.addExport(ExportedSymbol{
			Name: v.namedOr(decl, "default"), Kind: KindType,
			Line: line, Range: rng, UsedSymbols: v.typeIdentifierSet(decl),
		})
	case "enum_declaration":
		v.addExport(ExportedSymbol{
			Name: v.namedOr(decl, "default"), Kind: KindEnum,
			Line: line, Range: rng,
		})
	case "lexical_declaration", "variable_declaration":
		mutable := !strings.HasPrefix(v.text(decl), "const")
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			nameNode := d.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			v.addExport(ExportedSymbol{
				Name: v.text(nameNode), Kind: KindVariable, IsMutable: mutable,
				IsDefault: isDefault, Line: line, Range: rng,
				UsedSymbols: v.identifierSet(d),
			})
		}
	default:
		v.addExport(ExportedSymbol{
			Name: v.namedOr(decl, "default"), Kind: KindUnknown,
			IsDefault: isDefault, Line: line, Range: rng,
		})
	}
}

func (v *visitor) namedOr(decl *sitter.Node, fallback string) string {
	if name := decl.ChildByFieldName("name"); name != nil {
		return v.text(name)
	}
	return fallback
}

func (v *visitor) addExport(e ExportedSymbol) {
	v.exportList = append(v.exportList, e)
	v.exports[e.Name] = true
}
