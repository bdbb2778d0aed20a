// Package optimizer evolves skill instructions through iterative
// propose-and-evaluate search. The strategy is injected behind the
// Optimizer interface; Copro is the breadth/depth implementation.
package optimizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillforge/internal/adapter"
	"skillforge/internal/example"
	"skillforge/internal/logging"
	"skillforge/internal/metric"
	"skillforge/internal/reflection"
)

// Optimizer searches for a better instruction for the adapter against
// the trainset, judged by the metric. It returns the winning
// instruction text; the caller decides what to do with it.
type Optimizer interface {
	Compile(ctx context.Context, a adapter.Adapter, trainset []example.TrainingContext, m metric.Metric) (string, error)
	Name() string
}

// Search defaults.
const (
	DefaultBreadth = 3
	DefaultDepth   = 2
)

// Recorder receives one row per evaluated candidate. Implementations
// must tolerate being called from a single goroutine only.
type Recorder interface {
	RecordTrial(t Trial) error
}

// Trial is one candidate evaluation.
type Trial struct {
	RolloutID   string
	Skill       string
	Round       int
	Instruction string
	Score       float64
	Feedback    string
	Duration    time.Duration
}

// Copro runs a breadth/depth instruction search: each round asks the
// reflection model for breadth candidate instructions, scores every
// candidate over the whole trainset, and carries the best one into the
// next round. The baseline always competes; the result can never score
// below it.
type Copro struct {
	Reflection *reflection.Model
	Breadth    int
	Depth      int
	Recorder   Recorder
}

// NewCopro creates a Copro with default breadth and depth.
func NewCopro(model *reflection.Model) *Copro {
	return &Copro{
		Reflection: model,
		Breadth:    DefaultBreadth,
		Depth:      DefaultDepth,
	}
}

// Name identifies the strategy in summaries and logs.
func (c *Copro) Name() string { return "COPRO" }

// Compile runs the search and returns the best instruction found.
func (c *Copro) Compile(ctx context.Context, a adapter.Adapter, trainset []example.TrainingContext, m metric.Metric) (string, error) {
	if len(trainset) == 0 {
		return "", fmt.Errorf("empty trainset")
	}

	breadth := c.Breadth
	if breadth <= 0 {
		breadth = DefaultBreadth
	}
	depth := c.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	bestInstruction := a.Instruction()
	bestScore, err := c.evaluate(ctx, a, bestInstruction, trainset, m, 0)
	if err != nil {
		return "", fmt.Errorf("baseline evaluation failed: %w", err)
	}
	logging.Optimizer("baseline score=%.3f over %d examples", bestScore, len(trainset))

	for round := 1; round <= depth; round++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("optimization canceled in round %d: %w", round, err)
		}

		for i := 0; i < breadth; i++ {
			prompt := c.proposalPrompt(bestInstruction, bestScore, i)
			proposal := c.Reflection.Propose(ctx, prompt)
			candidate := strings.TrimSpace(proposal.ProposedInstruction)
			if candidate == "" || candidate == bestInstruction {
				logging.OptimizerDebug("round %d candidate %d: no new instruction", round, i)
				continue
			}

			score, err := c.evaluate(ctx, a, candidate, trainset, m, round)
			if err != nil {
				return "", fmt.Errorf("candidate evaluation failed in round %d: %w", round, err)
			}
			logging.Optimizer("round %d candidate %d score=%.3f (best=%.3f)", round, i, score, bestScore)

			if score > bestScore {
				bestScore = score
				bestInstruction = candidate
			}
		}
	}

	a.SetInstruction(bestInstruction)
	logging.Optimizer("search done: best score=%.3f instruction_len=%d", bestScore, len(bestInstruction))
	return bestInstruction, nil
}

// evaluate scores an instruction as the trainset-mean metric score.
func (c *Copro) evaluate(ctx context.Context, a adapter.Adapter, instruction string, trainset []example.TrainingContext, m metric.Metric, round int) (float64, error) {
	prev := a.Instruction()
	a.SetInstruction(instruction)
	defer a.SetInstruction(prev)

	var total float64
	for _, tc := range trainset {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		start := time.Now()
		pred := a.Predict(ctx, tc.StoryContext, tc.TechStack)
		result := m.Score(pred.Output)
		total += result.Score

		if c.Recorder != nil {
			trial := Trial{
				RolloutID:   fmt.Sprintf("r%d_%d", round, start.UnixNano()),
				Skill:       a.Kind().String(),
				Round:       round,
				Instruction: instruction,
				Score:       result.Score,
				Feedback:    result.Feedback,
				Duration:    time.Since(start),
			}
			if err := c.Recorder.RecordTrial(trial); err != nil {
				logging.OptimizerError("failed to record trial: %v", err)
			}
		}
	}
	return total / float64(len(trainset)), nil
}

// proposalPrompt asks the reflection model for a refined instruction.
// The variant index nudges diversity across the breadth.
func (c *Copro) proposalPrompt(current string, score float64, variant int) string {
	angles := []string{
		"Make the instruction more specific about output structure and required sections.",
		"Tighten the instruction: remove vague language, state concrete quality criteria.",
		"Extend the instruction with explicit handling of edge cases and failure modes.",
	}
	angle := angles[variant%len(angles)]

	return fmt.Sprintf(`You are improving an instruction used to guide a coding agent.

Current instruction (mean score %.2f out of 1.00):
---
%s
---

%s Propose an improved instruction that keeps the intent but raises output quality.`,
		score, current, angle)
}
