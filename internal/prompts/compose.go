package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/marlin/internal/species"
)

// Message is one turn of a prior conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Compose builds a prompt by combining the instructions and output spec for
// a stage. Candidate and details prompts append the reference species.
func Compose(stage Stage, reference []species.Species) (string, error) {
	instructions, err := Instructions(stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := Spec(stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if len(reference) > 0 && (stage == StageCandidates || stage == StageDetails) {
		sb.WriteString("\n\n")
		sb.WriteString(Reference(reference))
	}

	return sb.String(), nil
}

// Reference renders the allowed species list followed by one description
// line per species.
func Reference(entries []species.Species) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	var sb strings.Builder
	sb.WriteString("Allowed species list (exact English names): ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n\nReference descriptions:\n")
	for _, e := range entries {
		sb.WriteString("- ")
		sb.WriteString(e.Name)
		sb.WriteString(": ")
		sb.WriteString(e.Description)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Conversation builds a text-only prompt from a question, optional
// grounding context, and prior turns.
func Conversation(question, context string, history []Message) (string, error) {
	base, err := Compose(StageGeneration, nil)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(base)

	if strings.TrimSpace(context) != "" {
		sb.WriteString("\n\nContext:\n")
		sb.WriteString(strings.TrimSpace(context))
	}

	if len(history) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		for _, m := range history {
			role := m.Role
			if role == "" {
				role = "user"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, strings.TrimSpace(m.Content))
		}
	}

	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(strings.TrimSpace(question))

	return sb.String(), nil
}
