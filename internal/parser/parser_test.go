package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src, name string) *ParsedFile {
	t.Helper()
	p := New()
	parsed, err := p.Parse([]byte(src), name)
	require.NoError(t, err)
	return parsed
}

func TestParseImports(t *testing.T) {
	src := `import { a, b as c } from './b';
import * as ns from './ns';
import def from './def';
import './side-effect';
import type { T } from './types';
`
	parsed := parse(t, src, "a.ts")

	require.Len(t, parsed.Symbols.Imports, 6)
	assert.Equal(t, "a", parsed.Symbols.Imports[0].Name)
	assert.Equal(t, "./b", parsed.Symbols.Imports[0].Source)
	assert.Equal(t, "b", parsed.Symbols.Imports[1].Name)
	assert.Equal(t, "c", parsed.Symbols.Imports[1].Alias)

	ns := parsed.Symbols.Imports[2]
	assert.Equal(t, "*", ns.Name)
	assert.Equal(t, "ns", ns.Alias)

	def := parsed.Symbols.Imports[3]
	assert.Equal(t, "default", def.Name)
	assert.Equal(t, "def", def.Alias)

	side := parsed.Symbols.Imports[4]
	assert.Equal(t, "*", side.Name)
	assert.Empty(t, side.Alias)

	typed := parsed.Symbols.Imports[5]
	assert.True(t, typed.IsTypeOnly)
}

func TestParseExports(t *testing.T) {
	src := `export const x = 1;
export let mutable = 2;
export function fn() {}
export class Service {}
export interface Shape { size: number }
export type Alias = string;
export default fn;
export { helper } from './helper';
export * from './all';
`
	parsed := parse(t, src, "mod.ts")

	byName := map[string]ExportedSymbol{}
	for _, e := range parsed.Symbols.Exports {
		byName[e.Name] = e
	}

	assert.Equal(t, KindVariable, byName["x"].Kind)
	assert.False(t, byName["x"].IsMutable)
	assert.True(t, byName["mutable"].IsMutable)
	assert.Equal(t, KindFunction, byName["fn"].Kind)
	assert.Equal(t, KindClass, byName["Service"].Kind)
	assert.Equal(t, KindInterface, byName["Shape"].Kind)
	assert.Equal(t, KindType, byName["Alias"].Kind)

	helper := byName["helper"]
	assert.True(t, helper.IsReexport)
	assert.Equal(t, "./helper", helper.Source)

	star := byName["*"]
	assert.True(t, star.IsReexport)
	assert.Equal(t, "./all", star.Source)
}

func TestReexportsHaveSource(t *testing.T) {
	src := `export { a } from './a';
export * from './b';
`
	parsed := parse(t, src, "index.ts")
	for _, e := range parsed.Symbols.Exports {
		if e.IsReexport {
			assert.NotEmpty(t, e.Source, "reexport %q must carry a source", e.Name)
		}
	}
}

func TestDynamicImportAndRequire(t *testing.T) {
	src := `const lazy = import('./lazy');
const legacy = require('./legacy');
`
	parsed := parse(t, src, "dyn.ts")

	var dynamics []ImportedSymbol
	for _, imp := range parsed.Symbols.Imports {
		if imp.IsDynamic {
			dynamics = append(dynamics, imp)
		}
	}
	require.Len(t, dynamics, 2)
	assert.Equal(t, "./lazy", dynamics[0].Source)
	assert.Equal(t, "./legacy", dynamics[1].Source)
}

func TestRuntimeCodeDetection(t *testing.T) {
	withRuntime := parse(t, "console.log('boot');\n", "boot.ts")
	assert.True(t, withRuntime.Symbols.HasRuntimeCode)

	declarationsOnly := parse(t, "function helper() {}\nconst five = 5;\n", "lib.ts")
	assert.False(t, declarationsOnly.Symbols.HasRuntimeCode)

	callInit := parse(t, "const client = createClient();\n", "client.ts")
	assert.True(t, callInit.Symbols.HasRuntimeCode)
}

func TestEnvVars(t *testing.T) {
	src := `const url = process.env.DATABASE_URL;
const key = process.env["API_KEY"];
`
	parsed := parse(t, src, "config.ts")
	assert.True(t, parsed.Symbols.EnvVars["DATABASE_URL"])
	assert.True(t, parsed.Symbols.EnvVars["API_KEY"])
}

func TestCyclomaticComplexity(t *testing.T) {
	src := `function branchy(a: number, b: number) {
  if (a > 0) { return 1; }
  else if (a < 0) { return -1; }
  for (let i = 0; i < b; i++) {
    while (a-- > 0) {}
  }
  return a && b ? 1 : 0;
}
`
	parsed := parse(t, src, "cx.ts")
	require.Len(t, parsed.Functions, 1)
	fn := parsed.Functions[0]
	assert.Equal(t, "branchy", fn.Name)
	// base 1 + if + else-if + for + while + && + ternary = 7
	assert.Equal(t, 7, fn.CyclomaticComplexity)
	assert.Equal(t, 2, fn.ParamCount)
	assert.Equal(t, 2, fn.PrimitiveParams)
}

func TestMaxDepthNestedControlFlow(t *testing.T) {
	src := `function deep(x, i, j, k) {
  if (x) {
    for (;;) {
      if (j) {
        while (k) {
          work();
        }
      }
    }
  }
}
`
	parsed := parse(t, src, "deep.ts")
	require.Len(t, parsed.Functions, 1)
	assert.GreaterOrEqual(t, parsed.Functions[0].MaxDepth, 4)
}

func TestCognitiveComplexityNestingPenalty(t *testing.T) {
	flat := parse(t, `function f(a, b, c) {
  if (a) {}
  if (b) {}
  if (c) {}
}
`, "flat.ts")
	nested := parse(t, `function g(a, b, c) {
  if (a) {
    if (b) {
      if (c) {}
    }
  }
}
`, "nested.ts")

	require.Len(t, flat.Functions, 1)
	require.Len(t, nested.Functions, 1)
	assert.Equal(t, 3, flat.Functions[0].CognitiveComplexity)
	assert.Equal(t, 6, nested.Functions[0].CognitiveComplexity)
}

func TestClassMethodModel(t *testing.T) {
	src := `class Account {
  private balance = 0;
  constructor() { this.balance = 0; }
  deposit(amount: number) { this.balance += amount; }
  withdraw(amount: number) { this.deposit(-amount); }
  get total() { return this.balance; }
}
`
	parsed := parse(t, src, "account.ts")
	require.Len(t, parsed.Symbols.Classes, 1)
	class := parsed.Symbols.Classes[0]
	assert.Equal(t, "Account", class.Name)

	byName := map[string]MethodSymbol{}
	for _, m := range class.Methods {
		byName[m.Name] = m
	}
	assert.True(t, byName["constructor"].IsConstructor)
	assert.True(t, byName["total"].IsAccessor)
	assert.True(t, byName["deposit"].UsedFields["balance"])
	assert.True(t, byName["withdraw"].UsedMethods["deposit"])
}

func TestIgnoreComments(t *testing.T) {
	src := `// archlint-disable-next-line complexity
function messy() {}
const ok = 1; // archlint-disable-line dead_symbols -- intentional
`
	parsed := parse(t, src, "ignored.ts")
	assert.True(t, parsed.IsIgnored(2, "complexity"))
	assert.False(t, parsed.IsIgnored(2, "large_file"))
	assert.True(t, parsed.IsIgnored(3, "dead_symbols"))
}

func TestFileWideIgnore(t *testing.T) {
	src := `// archlint-disable
const anything = 1;
`
	parsed := parse(t, src, "all-off.ts")
	assert.True(t, parsed.IsIgnored(2, "complexity"))
	assert.True(t, parsed.IsIgnored(99, "anything"))
}

func TestParamCountInvariant(t *testing.T) {
	src := `function mixed(a: string, b: Config, c: number, rest: unknown) {}
`
	parsed := parse(t, src, "params.ts")
	require.Len(t, parsed.Functions, 1)
	fn := parsed.Functions[0]
	assert.GreaterOrEqual(t, fn.ParamCount, fn.PrimitiveParams)
	assert.Equal(t, 4, fn.ParamCount)
	assert.Equal(t, 3, fn.PrimitiveParams)
}

func TestLineIndex(t *testing.T) {
	ix := NewLineIndex([]byte("line1\nline2\nline3"))

	line, col := ix.LineCol(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = ix.LineCol(6)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	line, col = ix.LineCol(12)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)

	assert.Equal(t, 3, ix.LineCount())
}

func TestLineIndexEmpty(t *testing.T) {
	ix := NewLineIndex(nil)
	line, col := ix.LineCol(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	assert.Equal(t, 1, ix.LineCount())
}

func TestTokenizerNormalizesIdentifiers(t *testing.T) {
	p := New()
	a, err := p.Tokenize([]byte("const total = price + tax;"), "a.ts", ModeNormalized)
	require.NoError(t, err)
	b, err := p.Tokenize([]byte("const sum = left + right;"), "b.ts", ModeNormalized)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
	}
}

func TestTokenizerExactModeKeepsIdentifiers(t *testing.T) {
	p := New()
	tokens, err := p.Tokenize([]byte("const total = 1;"), "a.ts", ModeExact)
	require.NoError(t, err)

	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
	}
	assert.Contains(t, texts, "total")
	assert.Contains(t, texts, "NUM")
}
