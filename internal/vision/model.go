package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/marlin/internal/prompts"
	"github.com/JaimeStill/marlin/internal/species"
)

// ErrEmptyResponse indicates the model returned no content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Model is the set of vision-language calls the service makes. Each call
// returns the model's raw text.
type Model interface {
	Caption(ctx context.Context, img Image) (string, error)
	Candidates(ctx context.Context, img Image) (string, error)
	Details(ctx context.Context, img Image) (string, error)
	Chat(ctx context.Context, prompt string) (string, error)
}

type agentModel struct {
	agent   gaconfig.AgentConfig
	prompts map[prompts.Stage]string
	timeout time.Duration
	slots   *semaphore.Weighted
	logger  *slog.Logger
}

// New creates a Model backed by a go-agents agent. Prompts embedding the
// reference species are composed once here. At most cfg.MaxConcurrent
// calls run at a time across the process; each call is bounded by
// cfg.Timeout including the wait for a slot.
func New(
	agentCfg gaconfig.AgentConfig,
	cfg *Config,
	reference []species.Species,
	logger *slog.Logger,
) (Model, error) {
	composed := make(map[prompts.Stage]string, 3)
	for _, stage := range []prompts.Stage{
		prompts.StageCaption,
		prompts.StageCandidates,
		prompts.StageDetails,
	} {
		p, err := prompts.Compose(stage, reference)
		if err != nil {
			return nil, err
		}
		composed[stage] = p
	}

	return &agentModel{
		agent:   agentCfg,
		prompts: composed,
		timeout: cfg.TimeoutDuration(),
		slots:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:  logger.With("system", "vision"),
	}, nil
}

func (m *agentModel) Caption(ctx context.Context, img Image) (string, error) {
	return m.vision(ctx, prompts.StageCaption, img)
}

func (m *agentModel) Candidates(ctx context.Context, img Image) (string, error) {
	return m.vision(ctx, prompts.StageCandidates, img)
}

func (m *agentModel) Details(ctx context.Context, img Image) (string, error) {
	return m.vision(ctx, prompts.StageDetails, img)
}

func (m *agentModel) Chat(ctx context.Context, prompt string) (string, error) {
	ctx, release, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	a, err := agent.New(&m.agent)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return content(resp.Content())
}

func (m *agentModel) vision(ctx context.Context, stage prompts.Stage, img Image) (string, error) {
	dataURI, err := img.DataURI()
	if err != nil {
		return "", err
	}

	ctx, release, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	a, err := agent.New(&m.agent)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	start := time.Now()
	resp, err := a.Vision(ctx, m.prompts[stage], []string{dataURI})
	if err != nil {
		return "", fmt.Errorf("%s vision call: %w", stage, err)
	}

	m.logger.DebugContext(
		ctx, "vision call complete",
		"stage", stage,
		"duration", time.Since(start),
	)

	return content(resp.Content())
}

// acquire applies the call timeout and takes a concurrency slot. The
// returned release func cancels the timeout and frees the slot.
func (m *agentModel) acquire(ctx context.Context) (context.Context, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)

	if err := m.slots.Acquire(ctx, 1); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("acquire inference slot: %w", err)
	}

	return ctx, func() {
		m.slots.Release(1)
		cancel()
	}, nil
}

func content(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyResponse
	}
	return s, nil
}
