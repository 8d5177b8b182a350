// Package refiner polishes a finished subtitle translation with an LLM
// before it is aligned. The refined text keeps one line per source line.
package refiner

import "context"

// Refiner reviews and improves a draft translation for natural phrasing.
type Refiner interface {
	Refine(ctx context.Context, sourceLang, targetLang, sourceText, draftText string) (string, error)
}
