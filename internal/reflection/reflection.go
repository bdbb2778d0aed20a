// Package reflection asks a Gemini backend to propose improved
// instructions during optimization.
//
// The backend boundary is total: every recovery layer below a clean
// JSON response still yields a usable proposal, so Propose never fails.
package reflection

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"skillforge/internal/llm"
	"skillforge/internal/logging"
)

// Proposal is one candidate instruction from the reflection model.
type Proposal struct {
	ProposedInstruction string `json:"proposed_instruction"`
	ProposedPrefix      string `json:"proposed_prefix_for_output_field"`
}

// Fallback instructions used when the backend gives nothing usable.
const (
	fallbackInstruction      = "Follow the task requirements."
	emptyFallbackInstruction = "Follow the task requirements carefully."

	// maxRecoveredChars bounds a raw response reused as an instruction.
	maxRecoveredChars = 2000
)

const jsonGuidance = `

IMPORTANT: You MUST respond with valid JSON containing these fields:
{
  "proposed_instruction": "Your improved instruction text here",
  "proposed_prefix_for_output_field": ""
}
Only output the JSON object, nothing else.`

var proposalJSONRe = regexp.MustCompile(`(?s)\{[^{}]*"proposed_instruction"[^{}]*\}`)

// Model proposes instruction refinements via an llm.Client.
type Model struct {
	client llm.Client
}

// NewModel wraps a backend client for reflection use.
func NewModel(client llm.Client) *Model {
	return &Model{client: client}
}

// Propose sends the reflection prompt with JSON guidance appended and
// recovers a Proposal from whatever comes back. Recovery order: the
// first flat JSON object containing proposed_instruction, then the raw
// response truncated to maxRecoveredChars, then a synthesized minimal
// proposal. The returned proposal is always non-empty.
func (m *Model) Propose(ctx context.Context, prompt string) Proposal {
	raw, err := m.client.Complete(ctx, prompt+jsonGuidance)
	if err != nil {
		logging.Reflection("backend failed, using fallback proposal: %v", err)
		return Proposal{ProposedInstruction: fallbackInstruction}
	}

	content := strings.TrimSpace(raw)
	if content == "" {
		logging.Reflection("empty response, using fallback proposal")
		return Proposal{ProposedInstruction: emptyFallbackInstruction}
	}

	if match := proposalJSONRe.FindString(content); match != "" {
		var p Proposal
		if err := json.Unmarshal([]byte(match), &p); err == nil && strings.TrimSpace(p.ProposedInstruction) != "" {
			logging.ReflectionDebug("parsed proposal (%d chars)", len(p.ProposedInstruction))
			return p
		}
		logging.ReflectionDebug("matched JSON did not parse cleanly, recovering from raw text")
	}

	// The model wrote prose instead of JSON; treat it as the proposal.
	recovered := content
	if len(recovered) > maxRecoveredChars {
		recovered = recovered[:maxRecoveredChars]
	}
	logging.ReflectionDebug("recovered proposal from raw response (%d chars)", len(recovered))
	return Proposal{ProposedInstruction: recovered}
}
