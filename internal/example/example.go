// Package example loads golden examples and stories from the skill
// repository. Examples are markdown files with a frontmatter block and
// named sections; stories are opaque markdown consumed as training context.
package example

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"skillforge/internal/logging"

	"gopkg.in/yaml.v3"
)

// Suffixes for the two file kinds scanned under category subdirectories.
const (
	ExampleSuffix = ".example.md"
	StorySuffix   = ".story.md"
)

// Example is a labeled problem/solution pair used as a few-shot
// demonstration. Immutable after load.
type Example struct {
	ID            string
	Category      string
	SourceStory   string
	Tags          string
	Problem       string
	Solution      string
	KeyTechniques string
	FullContent   string
}

// Story is a task description consumed as opaque text plus the category
// and id derived from its path.
type Story struct {
	Path     string
	Category string
	Content  string
}

// ID returns the story identifier derived from the filename.
func (s Story) ID() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, StorySuffix)
}

// TrainingContext is one read-only input to a trial.
type TrainingContext struct {
	StoryContext string
	TechStack    string
}

var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n`)
	sectionRes    = map[string]*regexp.Regexp{}
)

func sectionRe(name string) *regexp.Regexp {
	if re, ok := sectionRes[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?s)## ` + regexp.QuoteMeta(name) + `\s*\n(.*?)(?:\n## |\z)`)
	sectionRes[name] = re
	return re
}

// ParseFrontmatter extracts the key/value frontmatter block from markdown
// content. Best-effort: missing or malformed frontmatter yields an empty
// map, never an error.
func ParseFrontmatter(content string) map[string]string {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return map[string]string{}
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(m[1]), &raw); err == nil {
		result := make(map[string]string, len(raw))
		for k, v := range raw {
			result[k] = strings.Trim(fmt.Sprintf("%v", v), `"'`)
		}
		return result
	}

	// Not valid YAML; fall back to naive key:value splitting.
	result := map[string]string{}
	for _, line := range strings.Split(m[1], "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		if key != "" {
			result[key] = value
		}
	}
	return result
}

// ExtractSection returns the body of a `## <name>` markdown section. The
// section runs from its header to the next `## ` header or end of file.
// A missing section yields an empty string.
func ExtractSection(content, name string) string {
	m := sectionRe(name).FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Load scans example files under rootDir. When category is non-empty only
// that subdirectory is scanned, otherwise every subdirectory is. When
// storyID is non-empty, files whose frontmatter id does not match are
// silently skipped. The filesystem is re-scanned on every call.
func Load(rootDir, category, storyID string) ([]Example, error) {
	searchDirs, err := categoryDirs(rootDir, category)
	if err != nil {
		return nil, err
	}

	var examples []Example
	for _, dir := range searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Missing category directory is not an error.
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ExampleSuffix) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				logging.Get(logging.CategoryExamples).Warn("skipping unreadable example %s: %v", path, err)
				continue
			}
			content := string(data)
			fm := ParseFrontmatter(content)

			if storyID != "" && fm["id"] != storyID {
				continue
			}

			id := fm["id"]
			if id == "" {
				id = strings.TrimSuffix(entry.Name(), ExampleSuffix)
			}

			examples = append(examples, Example{
				ID:            id,
				Category:      filepath.Base(dir),
				SourceStory:   fm["source_story"],
				Tags:          fm["tags"],
				Problem:       ExtractSection(content, "Problem"),
				Solution:      ExtractSection(content, "Solution"),
				KeyTechniques: ExtractSection(content, "Key Techniques"),
				FullContent:   content,
			})
		}
	}

	logging.Examples("loaded %d examples (root=%s category=%s story=%s)",
		len(examples), rootDir, category, storyID)
	return examples, nil
}

// LoadStories returns stories under storiesDir, optionally filtered to a
// single category subdirectory.
func LoadStories(storiesDir, category string) ([]Story, error) {
	searchDirs, err := categoryDirs(storiesDir, category)
	if err != nil {
		return nil, err
	}

	var stories []Story
	for _, dir := range searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), StorySuffix) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				logging.Get(logging.CategoryExamples).Warn("skipping unreadable story %s: %v", path, err)
				continue
			}
			stories = append(stories, Story{
				Path:     path,
				Category: filepath.Base(dir),
				Content:  string(data),
			})
		}
	}

	logging.Examples("loaded %d stories (root=%s category=%s)", len(stories), storiesDir, category)
	return stories, nil
}

// categoryDirs resolves the subdirectories to scan.
func categoryDirs(rootDir, category string) ([]string, error) {
	if category != "" {
		return []string{filepath.Join(rootDir, category)}, nil
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", rootDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(rootDir, entry.Name()))
		}
	}
	return dirs, nil
}

// ToDemos formats examples as demo strings for few-shot prompting.
func ToDemos(examples []Example) []string {
	demos := make([]string, 0, len(examples))
	for _, ex := range examples {
		demo := fmt.Sprintf("## Problem\n%s\n\n## Solution\n%s", ex.Problem, ex.Solution)
		if ex.KeyTechniques != "" {
			demo += fmt.Sprintf("\n\n## Key Techniques\n%s", ex.KeyTechniques)
		}
		demos = append(demos, demo)
	}
	return demos
}
