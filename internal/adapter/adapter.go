// Package adapter assembles skill prompts, executes them against a
// Gemini backend, and post-processes the raw output into a Prediction.
//
// Two variants exist: CodeAdapter produces TypeScript implementation
// code, DocAdapter produces structured test documentation. Both treat
// the backend boundary as never-raising: any backend failure yields an
// empty-output Prediction carrying the error text as reasoning.
package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"skillforge/internal/llm"
	"skillforge/internal/logging"
	"skillforge/internal/skill"
)

// Prediction is the post-processed result of one rollout.
type Prediction struct {
	// Output is the extracted content scored by the metric. Empty when
	// the backend failed.
	Output string
	// Reasoning is the model's thought process, or the error text when
	// the rollout failed.
	Reasoning string
}

// Adapter binds an instruction to a backend and output discipline.
// Instructions are mutable: the optimizer swaps candidate instructions
// in and out across trials.
type Adapter interface {
	// Predict runs one rollout for the story context and tech stack.
	// It never returns an error; failures are encoded in the Prediction.
	Predict(ctx context.Context, storyContext, techStack string) Prediction

	// Instruction returns the currently bound instruction text.
	Instruction() string

	// SetInstruction rebinds the instruction for subsequent rollouts.
	SetInstruction(instruction string)

	// Kind identifies the skill variant this adapter serves.
	Kind() skill.Kind
}

const maxDemos = 2

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:typescript|ts|javascript|js)?\n(.*?)```")
	reasoningRe = regexp.MustCompile(`(?s)## Reasoning\n(.*?)(?:##|\z)`)
)

// extractCode joins every fenced code block in the output. Output with
// no fenced blocks is returned whole.
func extractCode(raw string) string {
	matches := codeBlockRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return strings.Join(blocks, "\n\n")
}

// extractReasoning returns the `## Reasoning` section body, or empty.
func extractReasoning(raw string) string {
	m := reasoningRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// rolloutID tags one rollout for log correlation.
func rolloutID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

// demosBlock renders at most maxDemos demos under a Golden Examples
// header, separated by horizontal rules.
func demosBlock(demos []string) string {
	if len(demos) == 0 {
		return ""
	}
	if len(demos) > maxDemos {
		demos = demos[:maxDemos]
	}
	return "\n\n# Golden Examples\n" + strings.Join(demos, "\n---\n")
}

// CodeAdapter produces TypeScript implementation code.
type CodeAdapter struct {
	client      llm.Client
	instruction string
	demos       []string
}

// NewCodeAdapter creates the backend-engineer adapter.
func NewCodeAdapter(client llm.Client, instruction string, demos []string) *CodeAdapter {
	return &CodeAdapter{client: client, instruction: instruction, demos: demos}
}

// Predict runs one code-generation rollout.
func (a *CodeAdapter) Predict(ctx context.Context, storyContext, techStack string) Prediction {
	if techStack == "" {
		techStack = "TypeScript, Node.js, Jest"
	}

	id := rolloutID("ts_rollout")
	prompt := a.buildPrompt(storyContext, techStack)
	logging.AdapterDebug("[%s] code rollout prompt_len=%d", id, len(prompt))

	raw, err := a.client.Complete(ctx, prompt)
	if err != nil {
		logging.Adapter("[%s] rollout failed: %v", id, err)
		return Prediction{Output: "", Reasoning: fmt.Sprintf("Error: %v", err)}
	}

	return Prediction{
		Output:    extractCode(raw),
		Reasoning: extractReasoning(raw),
	}
}

func (a *CodeAdapter) buildPrompt(storyContext, techStack string) string {
	return fmt.Sprintf(`# Instructions
%s

# Technology Stack
%s%s

# Task
%s

# Expected Output
TypeScript code implementing the requirements:
- Proper interfaces and types
- Error handling with typed errors
- Jest test stubs where appropriate
- JSDoc comments for public APIs
`, a.instruction, techStack, demosBlock(a.demos), storyContext)
}

// Instruction returns the bound instruction text.
func (a *CodeAdapter) Instruction() string { return a.instruction }

// SetInstruction rebinds the instruction.
func (a *CodeAdapter) SetInstruction(instruction string) { a.instruction = instruction }

// Kind reports the served skill variant.
func (a *CodeAdapter) Kind() skill.Kind { return skill.BackendEngineer }

// DocAdapter produces structured test documentation.
type DocAdapter struct {
	client      llm.Client
	instruction string
	demos       []string
}

// NewDocAdapter creates the qa-engineer adapter.
func NewDocAdapter(client llm.Client, instruction string, demos []string) *DocAdapter {
	return &DocAdapter{client: client, instruction: instruction, demos: demos}
}

// Predict runs one documentation rollout. Unlike the code variant the
// raw output is kept whole; test docs are prose, not fenced code.
func (a *DocAdapter) Predict(ctx context.Context, storyContext, techStack string) Prediction {
	id := rolloutID("doc_rollout")
	prompt := a.buildPrompt(storyContext)
	logging.AdapterDebug("[%s] doc rollout prompt_len=%d", id, len(prompt))

	raw, err := a.client.Complete(ctx, prompt)
	if err != nil {
		logging.Adapter("[%s] rollout failed: %v", id, err)
		return Prediction{Output: "", Reasoning: fmt.Sprintf("Error: %v", err)}
	}

	return Prediction{
		Output:    raw,
		Reasoning: extractReasoning(raw),
	}
}

func (a *DocAdapter) buildPrompt(storyContext string) string {
	return fmt.Sprintf(`# Instructions
%s%s

# Task
%s

# Expected Output
Test documentation with:
- Test suite structure (describe/it blocks)
- Given/When/Then format for test cases
- Coverage targets and edge cases
- Jest test examples where appropriate
`, a.instruction, demosBlock(a.demos), storyContext)
}

// Instruction returns the bound instruction text.
func (a *DocAdapter) Instruction() string { return a.instruction }

// SetInstruction rebinds the instruction.
func (a *DocAdapter) SetInstruction(instruction string) { a.instruction = instruction }

// Kind reports the served skill variant.
func (a *DocAdapter) Kind() skill.Kind { return skill.QAEngineer }

// ForKind returns the adapter variant for a skill. Unrecognized kinds
// get the code adapter.
func ForKind(k skill.Kind, client llm.Client, instruction string, demos []string) Adapter {
	switch k {
	case skill.QAEngineer:
		return NewDocAdapter(client, instruction, demos)
	default:
		return NewCodeAdapter(client, instruction, demos)
	}
}
