package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdentical(t *testing.T) {
	text := "line one\nline two\n"
	if got := Unified("a.md", "b.md", text, text); got != "" {
		t.Errorf("identical inputs produced a diff:\n%s", got)
	}
}

func TestUnifiedAddedLine(t *testing.T) {
	oldText := "alpha\nbeta\ngamma\n"
	newText := "alpha\nbeta\ndelta\ngamma\n"

	got := Unified("baseline_adapter.md", "optimized_adapter.md", oldText, newText)

	if !strings.HasPrefix(got, "--- baseline_adapter.md\n+++ optimized_adapter.md\n") {
		t.Errorf("missing file headers:\n%s", got)
	}
	if !strings.Contains(got, "+delta") {
		t.Errorf("added line not marked:\n%s", got)
	}
	if !strings.Contains(got, "@@") {
		t.Errorf("missing hunk header:\n%s", got)
	}
	if strings.Contains(got, "-alpha") || strings.Contains(got, "-gamma") {
		t.Errorf("context lines marked as removals:\n%s", got)
	}
}

func TestUnifiedRemovedLine(t *testing.T) {
	oldText := "keep\ndrop this\nkeep too\n"
	newText := "keep\nkeep too\n"

	got := Unified("a", "b", oldText, newText)
	if !strings.Contains(got, "-drop this") {
		t.Errorf("removed line not marked:\n%s", got)
	}
}

func TestUnifiedReplacement(t *testing.T) {
	oldText := "Follow the instructions.\n"
	newText := "Follow the instructions carefully and state assumptions.\n"

	got := Unified("a", "b", oldText, newText)
	if !strings.Contains(got, "-Follow the instructions.") {
		t.Errorf("old line missing:\n%s", got)
	}
	if !strings.Contains(got, "+Follow the instructions carefully and state assumptions.") {
		t.Errorf("new line missing:\n%s", got)
	}
}

func TestUnifiedContextLimited(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 20; i++ {
		oldLines = append(oldLines, "same")
		newLines = append(newLines, "same")
	}
	oldLines[10] = "old middle"
	newLines[10] = "new middle"

	got := Unified("a", "b", strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n")

	contextCount := strings.Count(got, " same\n")
	if contextCount > 2*contextLines {
		t.Errorf("too much context (%d lines):\n%s", contextCount, got)
	}
	if contextCount == 0 {
		t.Errorf("no context emitted:\n%s", got)
	}
}
