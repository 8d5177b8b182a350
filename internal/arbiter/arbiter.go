// Package arbiter lets an LLM choose between translations of the same
// subtitle text produced by different services.
package arbiter

import (
	"context"

	"github.com/valpere/subtran/internal/translator"
)

type EvaluationResult struct {
	SelectedService string
	Text            string
	IsComposite     bool
	Reasoning       string
}

// Arbiter picks one translation out of results. The returned text always has
// as many lines as source.
type Arbiter interface {
	Evaluate(ctx context.Context, source string, sourceLang, targetLang string, results []translator.ServiceResult) (*EvaluationResult, error)
}
