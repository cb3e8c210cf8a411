package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// NormalizedToken is one token of the clone-detection stream. Identifiers and
// literals are canonicalized so renamed copies still hash equal; punctuation
// and keywords keep their text.
type NormalizedToken struct {
	Text      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// TokenizationMode selects how identifiers are treated.
type TokenizationMode int

const (
	// ModeNormalized maps identifiers and literals to stable placeholders
	// (Type-2 clones).
	ModeNormalized TokenizationMode = iota
	// ModeExact keeps identifier text (Type-1 clones only).
	ModeExact
)

// Tokenize produces the normalized token stream for content.
func (p *Parser) Tokenize(content []byte, path string, mode TokenizationMode) ([]NormalizedToken, error) {
	ts := sitter.NewParser()
	ts.SetLanguage(languageFor(path))
	tree, err := ts.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var tokens []NormalizedToken
	collectLeafTokens(tree.RootNode(), content, mode, &tokens)
	return tokens, nil
}

func collectLeafTokens(n *sitter.Node, src []byte, mode TokenizationMode, out *[]NormalizedToken) {
	if n.ChildCount() == 0 {
		if n.Type() == "comment" {
			return
		}
		text := normalizeToken(n, src, mode)
		if text == "" {
			return
		}
		*out = append(*out, NormalizedToken{
			Text:      text,
			StartLine: int(n.StartPoint().Row) + 1,
			StartCol:  int(n.StartPoint().Column) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
			EndCol:    int(n.EndPoint().Column) + 1,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "comment" {
			continue
		}
		collectLeafTokens(c, src, mode, out)
	}
}

func normalizeToken(n *sitter.Node, src []byte, mode TokenizationMode) string {
	switch n.Type() {
	case "identifier", "property_identifier", "type_identifier",
		"shorthand_property_identifier", "shorthand_property_identifier_pattern",
		"statement_identifier":
		if mode == ModeExact {
			return n.Content(src)
		}
		return "ID"
	case "string_fragment", "string", "template_string":
		return "STR"
	case "number":
		return "NUM"
	case "regex", "regex_pattern", "regex_flags":
		return "RE"
	case "true", "false":
		return "BOOL"
	default:
		return n.Content(src)
	}
}
