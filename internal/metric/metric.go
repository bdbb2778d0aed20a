// Package metric scores rollout outputs with cheap regex heuristics.
//
// Scores are deterministic in [0,1]: each variant runs a fixed check
// list, partial checks award graded credit, and the final score is the
// arithmetic mean. No model call happens here.
package metric

import (
	"fmt"
	"regexp"
	"strings"

	"skillforge/internal/logging"
	"skillforge/internal/skill"
)

// ScoreResult carries the score together with per-check feedback lines.
type ScoreResult struct {
	Score    float64
	Feedback string
}

// Metric scores one prediction output.
type Metric interface {
	Score(output string) ScoreResult
	Name() string
}

// Feedback glyphs: pass, partial, fail.
const (
	glyphPass    = "✓"
	glyphPartial = "△"
	glyphFail    = "✗"
)

func mean(checks []float64) float64 {
	if len(checks) == 0 {
		return 0.0
	}
	var sum float64
	for _, c := range checks {
		sum += c
	}
	return sum / float64(len(checks))
}

// CodeMetric validates TypeScript code output for the backend-engineer
// skill: language keywords, definitions, error handling, exports.
type CodeMetric struct {
	Verbose bool
}

var (
	tsKeywords = []string{"interface", "type", "export", "import", "async", "await", "Promise"}

	funcDefRe       = regexp.MustCompile(`(function\s+\w+|const\s+\w+\s*=\s*async?\s*\(|class\s+\w+)`)
	errorHandlingRe = regexp.MustCompile(`(try\s*\{|catch\s*\(|Error|throw\s+new)`)
	exportRe        = regexp.MustCompile(`export\s+(default\s+)?(function|const|class|interface|type)`)
)

// Score runs the four code checks and returns their mean.
func (m *CodeMetric) Score(output string) ScoreResult {
	if strings.TrimSpace(output) == "" {
		return ScoreResult{Score: 0.0, Feedback: "No content generated"}
	}

	var checks []float64
	var feedback []string

	keywordCount := 0
	for _, kw := range tsKeywords {
		if strings.Contains(output, kw) {
			keywordCount++
		}
	}
	hasSyntax := keywordCount >= 2
	checks = append(checks, gradedScore(hasSyntax, 0.3))
	feedback = append(feedback, fmt.Sprintf("%s TypeScript keywords: %d", glyph(hasSyntax, glyphPartial), keywordCount))

	hasFunctions := funcDefRe.MatchString(output)
	checks = append(checks, gradedScore(hasFunctions, 0.0))
	feedback = append(feedback, fmt.Sprintf("%s Functions/classes found", glyph(hasFunctions, glyphFail)))

	hasErrors := errorHandlingRe.MatchString(output)
	checks = append(checks, gradedScore(hasErrors, 0.5))
	feedback = append(feedback, fmt.Sprintf("%s Error handling: %s", glyph(hasErrors, glyphPartial), foundOr(hasErrors, "missing")))

	hasExports := exportRe.MatchString(output)
	checks = append(checks, gradedScore(hasExports, 0.5))
	feedback = append(feedback, fmt.Sprintf("%s Exports: %s", glyph(hasExports, glyphPartial), foundOr(hasExports, "missing")))

	score := mean(checks)
	if m.Verbose {
		logging.MetricDebug("code score=%.2f\n%s", score, strings.Join(feedback, "\n"))
	}
	return ScoreResult{Score: score, Feedback: strings.Join(feedback, "\n")}
}

// Name identifies the metric variant.
func (m *CodeMetric) Name() string { return "typescript-code" }

// DocMetric validates test documentation output for the qa-engineer
// skill: test structure, keyword density, markdown shape.
type DocMetric struct {
	Verbose bool
}

var (
	testStructureRe = regexp.MustCompile(`(?i)(describe\s*\(|it\s*\(|test\s*\(|Given|When|Then|beforeEach|afterEach)`)
	headerRe        = regexp.MustCompile(`(?m)^#+\s+\w`)
	listOrCodeRe    = regexp.MustCompile("(?m)(^[\\s]*[-*]\\s+\\w|```)")

	testKeywords = []string{"test", "verify", "check", "assert", "expect", "mock",
		"fixture", "coverage", "edge case", "error", "should"}
)

// Score runs the four documentation checks and returns their mean.
func (m *DocMetric) Score(output string) ScoreResult {
	if strings.TrimSpace(output) == "" {
		return ScoreResult{Score: 0.0, Feedback: "No content generated"}
	}

	var checks []float64
	var feedback []string

	hasStructure := testStructureRe.MatchString(output)
	checks = append(checks, gradedScore(hasStructure, 0.0))
	feedback = append(feedback, fmt.Sprintf("%s Test structure found", glyph(hasStructure, glyphFail)))

	lower := strings.ToLower(output)
	keywordCount := 0
	for _, kw := range testKeywords {
		if strings.Contains(lower, kw) {
			keywordCount++
		}
	}
	hasContent := keywordCount >= 3
	checks = append(checks, gradedScore(hasContent, 0.5))
	feedback = append(feedback, fmt.Sprintf("%s Test keywords: %d", glyph(hasContent, glyphPartial), keywordCount))

	hasHeaders := headerRe.MatchString(output)
	checks = append(checks, gradedScore(hasHeaders, 0.5))
	feedback = append(feedback, fmt.Sprintf("%s Headers: %s", glyph(hasHeaders, glyphPartial), foundOr(hasHeaders, "none")))

	hasLists := listOrCodeRe.MatchString(output)
	checks = append(checks, gradedScore(hasLists, 0.5))
	feedback = append(feedback, fmt.Sprintf("%s Lists/code blocks: %s", glyph(hasLists, glyphPartial), foundOr(hasLists, "none")))

	score := mean(checks)
	if m.Verbose {
		logging.MetricDebug("doc score=%.2f\n%s", score, strings.Join(feedback, "\n"))
	}
	return ScoreResult{Score: score, Feedback: strings.Join(feedback, "\n")}
}

// Name identifies the metric variant.
func (m *DocMetric) Name() string { return "test-doc" }

func gradedScore(pass bool, partial float64) float64 {
	if pass {
		return 1.0
	}
	return partial
}

func glyph(pass bool, failGlyph string) string {
	if pass {
		return glyphPass
	}
	return failGlyph
}

func foundOr(pass bool, miss string) string {
	if pass {
		return "found"
	}
	return miss
}

// ForKind returns the metric variant for a skill. Unrecognized kinds
// get the code metric.
func ForKind(k skill.Kind, verbose bool) Metric {
	switch k {
	case skill.QAEngineer:
		return &DocMetric{Verbose: verbose}
	default:
		return &CodeMetric{Verbose: verbose}
	}
}
