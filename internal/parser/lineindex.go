package parser

import (
	"bytes"
	"sort"
)

// LineIndex is a precomputed table of line-start byte offsets for O(log n)
// offset to (line, column) lookups. bytes.IndexByte does the newline scan
// with the runtime's vectorized search.
type LineIndex struct {
	lineStarts []int
}

// NewLineIndex builds the index for src.
func NewLineIndex(src []byte) *LineIndex {
	starts := make([]int, 1, len(src)/40+16)
	starts[0] = 0
	off := 0
	for {
		i := bytes.IndexByte(src[off:], '\n')
		if i < 0 {
			break
		}
		off += i + 1
		starts = append(starts, off)
	}
	return &LineIndex{lineStarts: starts}
}

// LineCol returns the 1-based line and column containing the byte offset.
func (ix *LineIndex) LineCol(offset int) (line, col int) {
	i := sort.SearchInts(ix.lineStarts, offset+1) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - ix.lineStarts[i] + 1
}

// Line returns just the 1-based line number for the byte offset.
func (ix *LineIndex) Line(offset int) int {
	l, _ := ix.LineCol(offset)
	return l
}

// LineCount returns the number of lines in the source.
func (ix *LineIndex) LineCount() int {
	return len(ix.lineStarts)
}
