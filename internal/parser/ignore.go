package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Ignore directive forms recognized inside comments:
//
//	archlint-disable [rule, rule2] [-- reason]
//	archlint-enable [rule]
//	archlint-disable-line [rule]
//	archlint-disable-next-line [rule]
//
// A bare directive without rule IDs applies to every rule ("*"). Disable
// without -line/-next-line is file-wide, lines above it included; it is
// recorded on line 0 to keep suppression checks cheap, and enable removes
// rules from that file-wide entry.
func (v *visitor) visitComment(n *sitter.Node) {
	text := strings.TrimSpace(v.text(n))
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	text = strings.TrimSpace(text)

	directive, rest, found := cutDirective(text)
	if !found {
		return
	}

	line, _ := v.lineCol(n)
	rules := parseRuleList(rest)

	if v.ignoredLines == nil {
		v.ignoredLines = map[int][]string{}
	}

	switch directive {
	case "archlint-disable":
		v.ignoredLines[0] = append(v.ignoredLines[0], rules...)
	case "archlint-disable-line":
		v.ignoredLines[line] = append(v.ignoredLines[line], rules...)
	case "archlint-disable-next-line":
		v.ignoredLines[line+1] = append(v.ignoredLines[line+1], rules...)
	case "archlint-enable":
		v.removeIgnores(0, rules)
	}
}

func cutDirective(text string) (directive, rest string, found bool) {
	for _, d := range []string{
		"archlint-disable-next-line",
		"archlint-disable-line",
		"archlint-disable",
		"archlint-enable",
	} {
		if text == d {
			return d, "", true
		}
		if strings.HasPrefix(text, d+" ") {
			return d, strings.TrimSpace(text[len(d):]), true
		}
	}
	return "", "", false
}

// parseRuleList parses "rule1, rule2 -- free text reason" into rule IDs.
func parseRuleList(rest string) []string {
	if i := strings.Index(rest, "--"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return []string{"*"}
	}
	parts := strings.Split(rest, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			rules = append(rules, p)
		}
	}
	if len(rules) == 0 {
		return []string{"*"}
	}
	return rules
}

func (v *visitor) removeIgnores(line int, rules []string) {
	existing := v.ignoredLines[line]
	if len(existing) == 0 {
		return
	}
	drop := map[string]bool{}
	for _, r := range rules {
		drop[r] = true
	}
	if drop["*"] {
		delete(v.ignoredLines, line)
		return
	}
	kept := existing[:0]
	for _, r := range existing {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(v.ignoredLines, line)
	} else {
		v.ignoredLines[line] = kept
	}
}
