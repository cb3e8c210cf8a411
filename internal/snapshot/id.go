package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"

	"github.com/archlint/archlint/internal/detect"
)

// SmellID builds the stable, deterministic identity of a smell. The same
// smell in two runs must map to the same ID regardless of detection order,
// so every constructor sorts its inputs.
func SmellID(smell *detect.ArchSmell, projectRoot string) string {
	switch smell.Kind {
	case detect.KindCyclicDependencyCluster, detect.KindCircularTypeDependency:
		return cycleID(smell.Files, projectRoot)

	case detect.KindGodModule:
		return fileID("god", smell.Files[0], projectRoot)
	case detect.KindLargeFile:
		return fileID("largefile", smell.Files[0], projectRoot)
	case detect.KindHubModule:
		return fileID("hub", smell.Files[0], projectRoot)
	case detect.KindUnstableInterface:
		return fileID("unstableinterface", smell.Files[0], projectRoot)
	case detect.KindLowCohesion:
		return fileID("lcom", smell.Files[0], projectRoot)
	case detect.KindDeadCode:
		return fileID("deadcode", smell.Files[0], projectRoot)

	case detect.KindLayerViolation:
		return symbolID("layer", smell.Files[0], smell.Details.ToLayer, projectRoot)
	case detect.KindTestLeakage:
		return edgeID("test_leak", smell.Files[0], smell.Details.TestFile, projectRoot)
	case detect.KindFeatureEnvy:
		return edgeID("envy", smell.Files[0], smell.Details.EnviedModule, projectRoot)

	case detect.KindDeadSymbol:
		return symbolID("dead", smell.Files[0], smell.Details.Name, projectRoot)
	case detect.KindOrphanType:
		return symbolID("orphan", smell.Files[0], smell.Details.Name, projectRoot)
	case detect.KindSharedMutableState:
		return symbolID("shared", smell.Files[0], smell.Details.Symbol, projectRoot)

	case detect.KindHighCyclomatic:
		return symbolID("cmplx", smell.Files[0], smell.Details.Function, projectRoot)
	case detect.KindHighCognitive:
		return symbolID("cogn", smell.Files[0], smell.Details.Function, projectRoot)
	case detect.KindDeepNesting:
		return symbolID("nest", smell.Files[0], smell.Details.Function, projectRoot)
	case detect.KindLongParameterList:
		return symbolID("params", smell.Files[0], smell.Details.Function, projectRoot)
	case detect.KindPrimitiveObsession:
		return symbolID("prim", smell.Files[0], smell.Details.Function, projectRoot)

	case detect.KindHubDependency:
		return "hub_dep:" + smell.Details.Package
	case detect.KindVendorCoupling:
		return "vendor:" + smell.Details.Package
	case detect.KindScatteredConfiguration:
		return "config:" + smell.Details.EnvVar

	case detect.KindCodeClone:
		return "clone:" + shortHash(smell.Details.CloneHash)

	default:
		return genericID(smell, projectRoot)
	}
}

func relative(path, projectRoot string) string {
	rel, err := filepath.Rel(projectRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// cycleID hashes the sorted member paths: a cycle can be discovered from any
// starting node, so order must not matter.
func cycleID(files []string, projectRoot string) string {
	rels := make([]string, len(files))
	for i, f := range files {
		rels[i] = relative(f, projectRoot)
	}
	sort.Strings(rels)
	return "cycle:" + shortHash(strings.Join(rels, "|"))
}

func fileID(prefix, file, projectRoot string) string {
	return prefix + ":" + relative(file, projectRoot)
}

func symbolID(prefix, file, name, projectRoot string) string {
	return prefix + ":" + relative(file, projectRoot) + ":" + name
}

func edgeID(prefix, from, to, projectRoot string) string {
	return prefix + ":" + relative(from, projectRoot) + ":" + relative(to, projectRoot)
}

func genericID(smell *detect.ArchSmell, projectRoot string) string {
	parts := make([]string, len(smell.Files))
	for i, f := range smell.Files {
		parts[i] = relative(f, projectRoot)
	}
	sort.Strings(parts)
	return strings.ToLower(string(smell.Kind)) + ":" + shortHash(strings.Join(parts, "|"))
}

// shortHash is the 8-hex-char prefix of SHA-256: short enough to read,
// long enough that collisions within one project are not a concern.
func shortHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:8]
}
