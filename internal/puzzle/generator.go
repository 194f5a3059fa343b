package puzzle

import (
	"context"

	"github.com/kiliankoe/wordclue/internal/ai"
	"github.com/rs/zerolog/log"
)

type Generator struct {
	provider     ai.Provider
	model        string
	systemPrompt string
}

func NewGenerator(p ai.Provider, model, systemPrompt string) *Generator {
	return &Generator{provider: p, model: model, systemPrompt: systemPrompt}
}

// Generate performs exactly one provider call. It does not retry.
func (g *Generator) Generate(ctx context.Context) (Puzzle, error) {
	var text string
	var err error
	if g.systemPrompt != "" {
		text, err = g.provider.CompleteWithSystem(ctx, g.model, g.systemPrompt, Prompt)
	} else {
		text, err = g.provider.Complete(ctx, g.model, Prompt)
	}
	if err != nil {
		return Puzzle{}, &GenerationError{Err: err}
	}
	p, err := Parse(text)
	if err != nil {
		log.Warn().Err(err).Str("model", g.model).Str("reply", text).Msg("unparseable puzzle reply")
		return Puzzle{}, &GenerationError{Err: err}
	}
	return p, nil
}
