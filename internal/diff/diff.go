// Package diff renders unified diffs between instruction revisions
// using the sergi/go-diff engine.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const contextLines = 3

// lineOp is one line-level edit.
type lineOp struct {
	op   diffmatchpatch.Operation
	text string
}

// Unified computes a unified diff between two texts. The fromFile and
// toFile names appear in the `---`/`+++` headers. Identical inputs
// yield an empty string.
func Unified(fromFile, toFile, oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Line-level reduction keeps edits aligned on newline boundaries.
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	ops := toLineOps(diffs)
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", fromFile)
	fmt.Fprintf(&sb, "+++ %s\n", toFile)
	for _, h := range hunks {
		sb.WriteString(h)
	}
	return sb.String()
}

// toLineOps flattens multi-line diff chunks into per-line operations.
func toLineOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	for _, d := range diffs {
		text := d.Text
		hadTrailing := strings.HasSuffix(text, "\n")
		if hadTrailing {
			text = strings.TrimSuffix(text, "\n")
		}
		if text == "" && !hadTrailing {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			ops = append(ops, lineOp{op: d.Type, text: line})
		}
	}
	return ops
}

// groupHunks renders hunks with contextLines of surrounding context.
func groupHunks(ops []lineOp) []string {
	// Index ranges of changed ops.
	type span struct{ start, end int }
	var spans []span
	for i, op := range ops {
		if op.op == diffmatchpatch.DiffEqual {
			continue
		}
		if len(spans) > 0 && i-spans[len(spans)-1].end <= 2*contextLines {
			spans[len(spans)-1].end = i
		} else {
			spans = append(spans, span{start: i, end: i})
		}
	}
	if len(spans) == 0 {
		return nil
	}

	// Track old/new line numbers per op index.
	oldLine := make([]int, len(ops))
	newLine := make([]int, len(ops))
	o, n := 1, 1
	for i, op := range ops {
		oldLine[i] = o
		newLine[i] = n
		switch op.op {
		case diffmatchpatch.DiffEqual:
			o++
			n++
		case diffmatchpatch.DiffDelete:
			o++
		case diffmatchpatch.DiffInsert:
			n++
		}
	}

	var hunks []string
	for _, s := range spans {
		start := s.start - contextLines
		if start < 0 {
			start = 0
		}
		end := s.end + contextLines
		if end >= len(ops) {
			end = len(ops) - 1
		}

		var oldCount, newCount int
		var body strings.Builder
		for i := start; i <= end; i++ {
			switch ops[i].op {
			case diffmatchpatch.DiffEqual:
				body.WriteString(" " + ops[i].text + "\n")
				oldCount++
				newCount++
			case diffmatchpatch.DiffDelete:
				body.WriteString("-" + ops[i].text + "\n")
				oldCount++
			case diffmatchpatch.DiffInsert:
				body.WriteString("+" + ops[i].text + "\n")
				newCount++
			}
		}

		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", oldLine[start], oldCount, newLine[start], newCount)
		hunks = append(hunks, header+body.String())
	}
	return hunks
}
