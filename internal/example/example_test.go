package example

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleExample = `---
id: ex-001
source_story: "story-042"
tags: auth, sessions
---

## Problem
Users lose their session when the token refreshes.

## Solution
Cache the refresh token and rotate it atomically.

## Key Techniques
Atomic file writes, token rotation.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "valid yaml",
			content: sampleExample,
			want: map[string]string{
				"id":           "ex-001",
				"source_story": "story-042",
				"tags":         "auth, sessions",
			},
		},
		{
			name:    "no frontmatter",
			content: "## Problem\nplain markdown",
			want:    map[string]string{},
		},
		{
			name:    "unterminated frontmatter",
			content: "---\nid: ex-002\nno closing delimiter",
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFrontmatter(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFrontmatter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractSection(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"Problem", "Users lose their session when the token refreshes."},
		{"Solution", "Cache the refresh token and rotate it atomically."},
		{"Key Techniques", "Atomic file writes, token rotation."},
		{"Missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			if got := ExtractSection(sampleExample, tt.section); got != tt.want {
				t.Errorf("ExtractSection(%q) = %q, want %q", tt.section, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "backend", "sessions.example.md"), sampleExample)
	writeFile(t, filepath.Join(root, "backend", "notes.md"), "not an example")
	writeFile(t, filepath.Join(root, "security", "oauth.example.md"), "## Problem\nP\n\n## Solution\nS\n")

	t.Run("single category", func(t *testing.T) {
		examples, err := Load(root, "backend", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 1 {
			t.Fatalf("got %d examples, want 1", len(examples))
		}
		ex := examples[0]
		if ex.ID != "ex-001" || ex.Category != "backend" || ex.SourceStory != "story-042" {
			t.Errorf("unexpected example: %+v", ex)
		}
		if !strings.Contains(ex.Problem, "lose their session") {
			t.Errorf("Problem = %q", ex.Problem)
		}
	})

	t.Run("all categories", func(t *testing.T) {
		examples, err := Load(root, "", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 2 {
			t.Fatalf("got %d examples, want 2", len(examples))
		}
	})

	t.Run("story filter", func(t *testing.T) {
		examples, err := Load(root, "backend", "ex-001")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 1 {
			t.Fatalf("story filter match: got %d, want 1", len(examples))
		}

		examples, err = Load(root, "backend", "no-such-story")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 0 {
			t.Fatalf("story filter miss: got %d, want 0", len(examples))
		}
	})

	t.Run("missing category", func(t *testing.T) {
		examples, err := Load(root, "devops", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 0 {
			t.Errorf("missing category: got %d examples, want 0", len(examples))
		}
	})

	t.Run("id falls back to filename", func(t *testing.T) {
		examples, err := Load(root, "security", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(examples) != 1 || examples[0].ID != "oauth" {
			t.Errorf("got %+v, want ID oauth", examples)
		}
	})
}

func TestLoadStories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "oauth", "refresh.story.md"), "As a user I want tokens refreshed.")
	writeFile(t, filepath.Join(root, "oauth", "README.md"), "not a story")

	stories, err := LoadStories(root, "oauth")
	if err != nil {
		t.Fatal(err)
	}
	if len(stories) != 1 {
		t.Fatalf("got %d stories, want 1", len(stories))
	}
	if stories[0].ID() != "refresh" || stories[0].Category != "oauth" {
		t.Errorf("unexpected story: %+v", stories[0])
	}
}

func TestToDemos(t *testing.T) {
	examples := []Example{
		{Problem: "P1", Solution: "S1", KeyTechniques: "K1"},
		{Problem: "P2", Solution: "S2"},
	}

	demos := ToDemos(examples)
	if len(demos) != 2 {
		t.Fatalf("got %d demos, want 2", len(demos))
	}
	if !strings.Contains(demos[0], "## Problem\nP1") || !strings.Contains(demos[0], "## Key Techniques\nK1") {
		t.Errorf("demo[0] = %q", demos[0])
	}
	if strings.Contains(demos[1], "Key Techniques") {
		t.Errorf("demo[1] should omit empty techniques: %q", demos[1])
	}
}
