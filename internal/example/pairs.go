package example

import (
	"os"
	"path/filepath"
	"strings"
)

// StoryCategories are the recognized story category subdirectories.
var StoryCategories = []string{"state-bridge", "oauth", "cli", "translation"}

// ExampleCategories are the recognized golden example subdirectories.
var ExampleCategories = []string{"backend", "qa", "security", "devops"}

// Pair links one story with one golden example for training.
type Pair struct {
	StoryID         string
	StoryCategory   string
	ExampleCategory string
	StoryPath       string
	ExamplePath     string
	StoryContent    string
	ExampleContent  string
}

// LoadStoryExamplePairs walks the fixed story categories and pairs each
// story with the first golden example found in any example category.
// Missing directories are skipped silently.
func LoadStoryExamplePairs(storiesDir, examplesDir string) ([]Pair, error) {
	var pairs []Pair

	for _, storyCat := range StoryCategories {
		catDir := filepath.Join(storiesDir, storyCat)
		entries, err := os.ReadDir(catDir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), StorySuffix) {
				continue
			}
			storyPath := filepath.Join(catDir, entry.Name())
			storyData, err := os.ReadFile(storyPath)
			if err != nil {
				continue
			}
			storyID := strings.TrimSuffix(entry.Name(), StorySuffix)

			examplePath, exampleCat, exampleContent := firstExample(examplesDir)
			if examplePath == "" {
				continue
			}

			pairs = append(pairs, Pair{
				StoryID:         storyID,
				StoryCategory:   storyCat,
				ExampleCategory: exampleCat,
				StoryPath:       storyPath,
				ExamplePath:     examplePath,
				StoryContent:    string(storyData),
				ExampleContent:  exampleContent,
			})
		}
	}

	return pairs, nil
}

// firstExample returns the first example file found across the example
// categories, in declaration order.
func firstExample(examplesDir string) (path, category, content string) {
	for _, cat := range ExampleCategories {
		catDir := filepath.Join(examplesDir, cat)
		entries, err := os.ReadDir(catDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ExampleSuffix) {
				continue
			}
			p := filepath.Join(catDir, entry.Name())
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			return p, cat, string(data)
		}
	}
	return "", "", ""
}
