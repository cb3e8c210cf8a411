// Package clone implements the duplicated-code engine: a sliding window of
// normalized tokens is hashed per file, windows with equal hashes across the
// project form candidate clusters, and overlapping occurrences within a file
// are merged before reporting.
package clone

import (
	"crypto/sha256"
	"sort"

	"github.com/archlint/archlint/internal/parser"
)

// Occurrence is one copy of a duplicated block.
type Occurrence struct {
	File        string
	TokenStart  int
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Cluster is a set of equal duplicated blocks.
type Cluster struct {
	Hash       [32]byte
	TokenCount int
	Occurrences []Occurrence
}

// Detect finds clone clusters across the tokenized files. Windows are
// minTokens long; buckets larger than maxBucketSize are dropped as
// pathological repetition (boilerplate that would drown the report).
func Detect(fileTokens map[string][]parser.NormalizedToken, minTokens, minLines, maxBucketSize int) []Cluster {
	windows := buildWindowMap(fileTokens, minTokens)

	var hashes [][32]byte
	for hash, bucket := range windows {
		if len(bucket) >= 2 && len(bucket) <= maxBucketSize {
			hashes = append(hashes, hash)
		}
	}
	sort.Slice(hashes, func(i, j int) bool {
		return string(hashes[i][:]) < string(hashes[j][:])
	})

	var clusters []Cluster
	for _, hash := range hashes {
		bucket := windows[hash]
		cluster := Cluster{Hash: hash, TokenCount: minTokens}
		for _, site := range bucket {
			tokens := fileTokens[site.file]
			first := tokens[site.offset]
			last := tokens[site.offset+minTokens-1]
			occ := Occurrence{
				File:        site.file,
				TokenStart:  site.offset,
				StartLine:   first.StartLine,
				StartColumn: first.StartCol,
				EndLine:     last.EndLine,
				EndColumn:   last.EndCol,
			}
			if occ.EndLine-occ.StartLine+1 < minLines {
				continue
			}
			cluster.Occurrences = append(cluster.Occurrences, occ)
		}
		if len(cluster.Occurrences) < 2 {
			continue
		}
		cluster.Occurrences = MergeOverlapping(cluster.Occurrences)
		if len(cluster.Occurrences) < 2 {
			continue
		}
		sortOccurrences(cluster.Occurrences)
		clusters = append(clusters, cluster)
	}
	return clusters
}

type site struct {
	file   string
	offset int
}

func buildWindowMap(fileTokens map[string][]parser.NormalizedToken, minTokens int) map[[32]byte][]site {
	var files []string
	for file, tokens := range fileTokens {
		if len(tokens) >= minTokens {
			files = append(files, file)
		}
	}
	sort.Strings(files)

	windows := map[[32]byte][]site{}
	for _, file := range files {
		tokens := fileTokens[file]
		for offset := 0; offset+minTokens <= len(tokens); offset++ {
			hash := windowHash(tokens[offset : offset+minTokens])
			windows[hash] = append(windows[hash], site{file: file, offset: offset})
		}
	}
	return windows
}

// windowHash hashes the normalized token texts with a separator so token
// boundaries cannot alias.
func windowHash(window []parser.NormalizedToken) [32]byte {
	h := sha256.New()
	for _, token := range window {
		h.Write([]byte(token.Text))
		h.Write([]byte{0})
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// MergeOverlapping collapses occurrences in the same file whose line ranges
// overlap, taking the union of the ranges and the smallest token offset.
// Occurrences in different files never merge.
func MergeOverlapping(occurrences []Occurrence) []Occurrence {
	sortOccurrences(occurrences)

	var merged []Occurrence
	for _, occ := range occurrences {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.File == occ.File && overlaps(last, &occ) {
				mergeInto(last, &occ)
				continue
			}
		}
		merged = append(merged, occ)
	}
	return merged
}

func overlaps(a, b *Occurrence) bool {
	return max(a.StartLine, b.StartLine) <= min(a.EndLine, b.EndLine)
}

func mergeInto(dst, src *Occurrence) {
	if src.StartLine < dst.StartLine {
		dst.StartLine = src.StartLine
		dst.StartColumn = src.StartColumn
	} else if src.StartLine == dst.StartLine && src.StartColumn < dst.StartColumn {
		dst.StartColumn = src.StartColumn
	}
	if src.EndLine > dst.EndLine {
		dst.EndLine = src.EndLine
		dst.EndColumn = src.EndColumn
	} else if src.EndLine == dst.EndLine && src.EndColumn > dst.EndColumn {
		dst.EndColumn = src.EndColumn
	}
	if src.TokenStart < dst.TokenStart {
		dst.TokenStart = src.TokenStart
	}
}

func sortOccurrences(occurrences []Occurrence) {
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].File != occurrences[j].File {
			return occurrences[i].File < occurrences[j].File
		}
		return occurrences[i].StartLine < occurrences[j].StartLine
	})
}
