package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/subtran/internal/postprocess"
	"github.com/valpere/subtran/internal/proportional"
)

// OllamaRefiner uses a local Ollama model as a subtitle editor.
type OllamaRefiner struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaRefiner creates a refiner backed by a local Ollama model.
func NewOllamaRefiner(model, baseURL string) *OllamaRefiner {
	return &OllamaRefiner{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

// Refine sends the numbered draft to the LLM and returns the polished lines.
// An empty answer keeps the draft; an answer with broken numbering is an
// error.
func (r *OllamaRefiner) Refine(ctx context.Context, sourceLang, targetLang, sourceText, draftText string) (string, error) {
	draft := proportional.SplitLines(draftText)
	if len(draft) == 0 {
		return draftText, nil
	}

	reqBody := ollamaRequest{
		Model:  r.model,
		Prompt: buildRefinementPrompt(sourceLang, targetLang, sourceText, draftText),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal refinement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/generate", r.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create refinement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refinement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refiner returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode refinement response: %w", err)
	}

	refined := postprocess.Clean(ollamaResp.Response)
	if refined == "" {
		return draftText, nil
	}

	lines, err := postprocess.StripLineNumbers(refined, len(draft))
	if err != nil {
		return "", fmt.Errorf("refiner broke the line numbering: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func buildRefinementPrompt(sourceLang, targetLang, sourceText, draftText string) string {
	draft := proportional.SplitLines(draftText)

	return fmt.Sprintf(`You are an experienced %s subtitle editor.

# YOUR TASK: REFINE AND POLISH

You will receive a DRAFT %s subtitle translation, one sentence per numbered line.
Rewrite each line so it reads naturally in %s.

ORIGINAL (%s):
%s
DRAFT TRANSLATION (%s):
%s
# REFINEMENT PRINCIPLES

**Priority:**
1. Preserve meaning - Keep the original meaning intact
2. Natural flow - Spoken, idiomatic %s
3. Brevity - Subtitles are read quickly

**What to Preserve:**
- The numbering: exactly %d lines, never merge or split lines
- Names, proper nouns and numbers

CRITICAL: If a line is already good, return it unchanged.

Output ONLY the %d numbered lines in %s. Do not include any explanation.`,
		targetLang,
		targetLang, targetLang,
		sourceLang, postprocess.NumberLines(proportional.SplitLines(sourceText)),
		targetLang, postprocess.NumberLines(draft),
		targetLang,
		len(draft),
		len(draft), targetLang,
	)
}
