// Package results persists optimization artifacts: the optimized
// adapter.md, a timestamped version copy, a unified diff against the
// baseline, and a JSON run summary.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"skillforge/internal/diff"
	"skillforge/internal/logging"
	"skillforge/internal/skill"
)

// TimestampFormat is the run timestamp used in artifact filenames.
const TimestampFormat = "20060102_150405"

// Summary is the machine-readable record of one optimization run.
type Summary struct {
	Skill          string `json:"skill"`
	Category       string `json:"category"`
	Optimizer      string `json:"optimizer"`
	BaselineChars  int    `json:"baseline_chars"`
	OptimizedChars int    `json:"optimized_chars"`
	Changed        bool   `json:"changed"`
	Timestamp      string `json:"timestamp"`
}

// SaveOptimizedSkill writes the evolved instruction to the skill's
// adapter.md, keeps a timestamped copy under outputDir/skill_versions,
// and writes a unified diff under skillDir/diffs when the instruction
// actually changed.
func SaveOptimizedSkill(instruction, baseline, skillDir, outputDir, timestamp string) error {
	targetPath := filepath.Join(skillDir, skill.AdapterFile)
	if err := os.WriteFile(targetPath, []byte(instruction), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", targetPath, err)
	}

	versionsDir := filepath.Join(outputDir, "skill_versions")
	if err := os.MkdirAll(versionsDir, 0755); err != nil {
		return fmt.Errorf("failed to create versions directory: %w", err)
	}
	versionPath := filepath.Join(versionsDir, fmt.Sprintf("adapter_md_%s.md", timestamp))
	if err := os.WriteFile(versionPath, []byte(instruction), 0644); err != nil {
		return fmt.Errorf("failed to write version copy: %w", err)
	}

	unified := diff.Unified("baseline_adapter.md", "optimized_adapter.md", baseline, instruction)
	if unified != "" {
		diffsDir := filepath.Join(skillDir, "diffs")
		if err := os.MkdirAll(diffsDir, 0755); err != nil {
			return fmt.Errorf("failed to create diffs directory: %w", err)
		}
		diffPath := filepath.Join(diffsDir, fmt.Sprintf("run_%s.diff", timestamp))
		if err := os.WriteFile(diffPath, []byte(unified), 0644); err != nil {
			return fmt.Errorf("failed to write diff: %w", err)
		}
		logging.Results("diff saved to %s", diffPath)
	}

	logging.Results("optimized skill saved to %s", targetPath)
	return nil
}

// SaveSummary writes the JSON run summary to
// outputDir/optimization_<skill>_<timestamp>.json and returns its path.
func SaveSummary(s *Summary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("optimization_%s_%s.json", s.Skill, s.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	logging.Results("results saved to %s", path)
	return path, nil
}
