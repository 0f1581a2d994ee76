package identification

import (
	"context"
	"errors"
	"strings"

	"github.com/JaimeStill/marlin/internal/prompts"
	"github.com/JaimeStill/marlin/internal/stage"
)

// ErrEmptyQuestion is returned when a generation request has no question.
var ErrEmptyQuestion = errors.New("no question provided")

// GenerationRequest is the body of POST /generation.
type GenerationRequest struct {
	Question    string            `json:"question"`
	ChatHistory []prompts.Message `json:"chat_history"`
	Context     string            `json:"context"`
}

// GenerationResult is the body returned by POST /generation.
type GenerationResult struct {
	Response string `json:"response"`
}

func (s *system) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return GenerationResult{}, stage.Wrap(stage.Generate, stage.ErrBadRequest, ErrEmptyQuestion)
	}

	prompt, err := prompts.Conversation(req.Question, req.Context, req.ChatHistory)
	if err != nil {
		return GenerationResult{}, stage.Wrap(stage.Generate, stage.ErrUpstreamUnavailable, err)
	}

	done := s.rt.Metrics.Time(stage.Generate)
	response, err := s.rt.Model.Chat(ctx, prompt)
	done()
	if err != nil {
		return GenerationResult{}, stage.Wrap(stage.Generate, stage.ErrUpstreamUnavailable, err)
	}

	return GenerationResult{Response: strings.TrimSpace(response)}, nil
}
