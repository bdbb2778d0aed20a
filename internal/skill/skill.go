// Package skill resolves skill identities to their adapter and metric
// variants and loads baseline instructions from the skill directory.
//
// Dispatch is a closed enum: each Kind binds one adapter variant and one
// metric variant, resolved at configuration time.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind identifies a skill variant.
type Kind int

const (
	// BackendEngineer produces implementation code output.
	BackendEngineer Kind = iota
	// QAEngineer produces structured test documentation output.
	QAEngineer
)

// String returns the canonical skill name.
func (k Kind) String() string {
	switch k {
	case QAEngineer:
		return "qa-engineer"
	default:
		return "backend-engineer"
	}
}

// ParseKind maps a skill name to its Kind. Unrecognized names default to
// BackendEngineer, the code-output variant.
func ParseKind(name string) Kind {
	switch name {
	case "qa-engineer":
		return QAEngineer
	default:
		return BackendEngineer
	}
}

// Baseline file names inside a skill directory.
const (
	AdapterFile = "adapter.md"
	SkillFile   = "SKILL.md"
)

var skillBodyRe = regexp.MustCompile(`(?s)\A---\s*\n.*?\n---\s*\n(.*)`)

// LoadBaseline loads the baseline instruction for a skill directory and
// returns the instruction text together with the target filename that the
// optimized instruction should be written back to.
//
// adapter.md is preferred (the mutable instruction). When absent, the
// SKILL.md body after the closing frontmatter delimiter is used. When
// neither file exists the skill cannot be optimized and an error is
// returned.
func LoadBaseline(skillDir string) (instruction, targetFile string, err error) {
	adapterPath := filepath.Join(skillDir, AdapterFile)
	if data, err := os.ReadFile(adapterPath); err == nil {
		return string(data), AdapterFile, nil
	}

	skillPath := filepath.Join(skillDir, SkillFile)
	data, err := os.ReadFile(skillPath)
	if err != nil {
		return "", "", fmt.Errorf("skill not found: %s", skillDir)
	}

	content := string(data)
	if m := skillBodyRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), AdapterFile, nil
	}
	return content, AdapterFile, nil
}

// categoryMap maps story categories to golden example categories.
var categoryMap = map[string]string{
	"state-bridge": "backend",
	"oauth":        "security",
	"cli":          "backend",
	"translation":  "backend",
}

// ExampleCategoryFor returns the golden example category for a story
// category, defaulting to backend.
func ExampleCategoryFor(storyCategory string) string {
	if cat, ok := categoryMap[storyCategory]; ok {
		return cat
	}
	return "backend"
}

// ValidCategories returns the accepted story categories.
func ValidCategories() []string {
	return []string{"state-bridge", "oauth", "cli", "translation"}
}

// IsValidCategory reports whether the story category is recognized.
func IsValidCategory(category string) bool {
	_, ok := categoryMap[category]
	return ok
}
