package detect

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// nodeBuiltins are packages shipped with the runtime; they never count as
// vendor dependencies.
var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"timers": true, "tls": true, "trace_events": true, "tty": true, "url": true,
	"util": true, "v8": true, "vm": true, "wasi": true, "worker_threads": true,
	"zlib": true,
}

// externalPackage reports whether an import source names a package rather
// than a project file.
func externalPackage(source string) bool {
	return !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/")
}

// packageName extracts "lodash" from "lodash/get" and "@scope/pkg" from
// "@scope/pkg/utils".
func packageName(source string) string {
	if strings.HasPrefix(source, "@") {
		parts := strings.SplitN(source, "/", 3)
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
	}
	if i := strings.Index(source, "/"); i >= 0 {
		return source[:i]
	}
	return source
}

func builtinPackage(name string) bool {
	return strings.HasPrefix(name, "node:") || nodeBuiltins[name]
}

// ignoredPackage matches a package against the rule's ignore list; entries
// may be exact names, "prefix/*" scopes, or globs.
func ignoredPackage(pkg string, patterns []string) bool {
	if builtinPackage(pkg) {
		return true
	}
	for _, pattern := range patterns {
		switch {
		case strings.HasSuffix(pattern, "/*"):
			if strings.HasPrefix(pkg, pattern[:len(pattern)-1]) {
				return true
			}
		case strings.Contains(pattern, "*"):
			if ok, err := doublestar.Match(pattern, pkg); err == nil && ok {
				return true
			}
		default:
			if pattern == pkg {
				return true
			}
		}
	}
	return false
}
