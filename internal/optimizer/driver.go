package optimizer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"skillforge/internal/adapter"
	"skillforge/internal/example"
	"skillforge/internal/llm"
	"skillforge/internal/logging"
	"skillforge/internal/metric"
	"skillforge/internal/results"
	"skillforge/internal/skill"
)

// maxDemoExamples caps how many golden examples become demos.
const maxDemoExamples = 3

// DriverOptions configure one optimization run.
type DriverOptions struct {
	Skill       string
	Category    string
	RepoRoot    string
	MaxRollouts int
	OutputDir   string
	Verbose     bool
}

// Driver orchestrates a full run: load inputs, search, persist.
type Driver struct {
	client    llm.Client
	optimizer Optimizer
}

// NewDriver wires a backend client to an optimization strategy.
func NewDriver(client llm.Client, opt Optimizer) *Driver {
	return &Driver{client: client, optimizer: opt}
}

// Run executes the optimization loop for one skill and category.
// Optimizer failures are fatal and returned to the caller.
func (d *Driver) Run(ctx context.Context, opts DriverOptions) (*results.Summary, error) {
	timer := logging.StartTimer(logging.CategoryOptimizer, "optimization run")
	defer timer.StopWithInfo()

	timestamp := time.Now().Format(results.TimestampFormat)
	kind := skill.ParseKind(opts.Skill)

	skillDir := filepath.Join(opts.RepoRoot, "skills", opts.Skill)
	baseline, targetFile, err := skill.LoadBaseline(skillDir)
	if err != nil {
		return nil, err
	}
	logging.Optimizer("loaded %s for skill %q (%d chars)", targetFile, opts.Skill, len(baseline))

	storiesDir := filepath.Join(opts.RepoRoot, "stories")
	stories, err := example.LoadStories(storiesDir, opts.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	if len(stories) == 0 {
		return nil, fmt.Errorf("no stories found for category: %s", opts.Category)
	}

	exampleCategory := skill.ExampleCategoryFor(opts.Category)
	examplesDir := filepath.Join(opts.RepoRoot, "golden-examples")
	examples, err := example.Load(examplesDir, exampleCategory, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load examples: %w", err)
	}
	if len(examples) > maxDemoExamples {
		examples = examples[:maxDemoExamples]
	}
	demos := example.ToDemos(examples)

	logging.Optimizer("loaded %d stories and %d examples (%s->%s)",
		len(stories), len(examples), opts.Category, exampleCategory)

	a := adapter.ForKind(kind, d.client, baseline, demos)
	m := metric.ForKind(kind, opts.Verbose)

	trainset := make([]example.TrainingContext, 0, len(stories))
	for _, story := range stories {
		trainset = append(trainset, example.TrainingContext{
			StoryContext: story.Content,
			TechStack:    "TypeScript, Node.js, Jest",
		})
	}
	if opts.MaxRollouts > 0 && len(trainset) > opts.MaxRollouts {
		trainset = trainset[:opts.MaxRollouts]
	}

	logging.Optimizer("starting %s optimization: skill=%s category=%s trainset=%d",
		d.optimizer.Name(), opts.Skill, opts.Category, len(trainset))

	finalInstruction, err := d.optimizer.Compile(ctx, a, trainset, m)
	if err != nil {
		logging.OptimizerError("optimization failed: %v", err)
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	changed := finalInstruction != baseline
	if changed {
		logging.Optimizer("instruction evolved (%d chars)", len(finalInstruction))
		if err := results.SaveOptimizedSkill(finalInstruction, baseline, skillDir, opts.OutputDir, timestamp); err != nil {
			return nil, err
		}
	} else {
		logging.Optimizer("instruction unchanged (baseline optimal)")
	}

	summary := &results.Summary{
		Skill:          opts.Skill,
		Category:       opts.Category,
		Optimizer:      d.optimizer.Name(),
		BaselineChars:  len(baseline),
		OptimizedChars: len(finalInstruction),
		Changed:        changed,
		Timestamp:      timestamp,
	}

	if _, err := results.SaveSummary(summary, opts.OutputDir); err != nil {
		return nil, err
	}
	return summary, nil
}
