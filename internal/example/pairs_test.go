package example

import (
	"path/filepath"
	"testing"
)

func TestLoadStoryExamplePairs(t *testing.T) {
	storiesDir := t.TempDir()
	examplesDir := t.TempDir()

	writeFile(t, filepath.Join(storiesDir, "state-bridge", "a.story.md"), "story a")
	writeFile(t, filepath.Join(storiesDir, "oauth", "b.story.md"), "story b")
	writeFile(t, filepath.Join(examplesDir, "backend", "first.example.md"), "example content")

	pairs, err := LoadStoryExamplePairs(storiesDir, examplesDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	for _, p := range pairs {
		if p.ExampleCategory != "backend" {
			t.Errorf("pair %s example category = %q", p.StoryID, p.ExampleCategory)
		}
		if p.ExampleContent != "example content" {
			t.Errorf("pair %s example content = %q", p.StoryID, p.ExampleContent)
		}
	}
}

func TestLoadStoryExamplePairsNoExamples(t *testing.T) {
	storiesDir := t.TempDir()
	writeFile(t, filepath.Join(storiesDir, "cli", "c.story.md"), "story c")

	pairs, err := LoadStoryExamplePairs(storiesDir, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs without examples, want 0", len(pairs))
	}
}
