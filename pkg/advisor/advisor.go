// Package advisor turns the month's numbers into a prompt for a
// generative model and asks it for a savings plan. The model only ever
// sees aggregates and projections, never raw transactions.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/stats"
	"github.com/rs/zerolog/log"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used for advice.
const DefaultModel = "models/gemini-3-pro-preview"

// ErrEmptyAnswer means the model returned no usable text.
var ErrEmptyAnswer = errors.New("advisor: model returned no answer")

// Advisor asks a Gemini model for financial advice grounded in the
// family's current month and cash-flow projection.
type Advisor struct {
	svc   *generativelanguage.Service
	model string
}

// New creates an Advisor using an API key.
func New(ctx context.Context, apiKey string) (*Advisor, error) {
	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("advisor: create service: %w", err)
	}
	return &Advisor{svc: svc, model: DefaultModel}, nil
}

// WithModel switches the model name ("models/..." form).
func (a *Advisor) WithModel(model string) *Advisor {
	a.model = model
	return a
}

// Ask sends the question plus the financial context and returns the
// model's answer.
func (a *Advisor) Ask(ctx context.Context, question string, data *domain.MonthData, projections []stats.Projection) (string, error) {
	prompt, err := BuildPrompt(question, data, projections)
	if err != nil {
		return "", err
	}

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: SystemInstruction}},
		},
	}

	resp, err := a.svc.Models.GenerateContent(a.model, req).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Str("model", a.model).Msg("Advisor request failed")
		return "", fmt.Errorf("advisor: generate content: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrEmptyAnswer
}
