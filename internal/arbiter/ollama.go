package arbiter

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
	"github.com/valpere/subtran/internal/translator"
)

type OllamaArbiter struct {
	model   string
	baseURL string
	client  *http.Client
}

type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type OllamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaArbiter(model, baseURL string) *OllamaArbiter {
	return &OllamaArbiter{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (a *OllamaArbiter) Evaluate(ctx context.Context, source string, sourceLang, targetLang string, results []translator.ServiceResult) (*EvaluationResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to evaluate")
	}

	if len(results) == 1 {
		return &EvaluationResult{
			SelectedService: results[0].ServiceName,
			Text:            results[0].TranslatedText,
			Reasoning:       "Only one service available",
		}, nil
	}

	reqBody := OllamaRequest{
		Model:  a.model,
		Prompt: buildArbiterPrompt(source, sourceLang, targetLang, results),
		Stream: false,
		Format: "json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/generate", a.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arbiter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arbiter returned status %d", resp.StatusCode)
	}

	var ollamaResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	res, err := parseArbiterResponse(ollamaResp.Response)
	if err != nil {
		return nil, err
	}
	return resolve(res, len(proportional.SplitLines(source)), results)
}

func buildArbiterPrompt(source, sourceLang, targetLang string, results []translator.ServiceResult) string {
	lines := proportional.SplitLines(source)

	var sb strings.Builder
	sb.WriteString("You are a professional subtitle translation evaluator.\n")
	fmt.Fprintf(&sb, "Given the original subtitle text in %s, one sentence per numbered line:\n", sourceLang)
	sb.WriteString(postprocess.NumberLines(lines))
	fmt.Fprintf(&sb, "\nAnd these translations to %s:\n", targetLang)

	for _, r := range results {
		fmt.Fprintf(&sb, "\n[%s]:\n", r.ServiceName)
		sb.WriteString(postprocess.NumberLines(proportional.SplitLines(r.TranslatedText)))
	}

	names := make([]string, 0, len(results)+1)
	for _, r := range results {
		names = append(names, r.ServiceName)
	}
	names = append(names, "composite")

	fmt.Fprintf(&sb, `
Select the best translation or compose an improved one from the available options.
A composed translation must keep exactly %d numbered lines, one per original line.
Respond ONLY in JSON:
{
  "selected_service": "%s",
  "final_text": "numbered lines, only for composite",
  "reasoning": "..."
}
`, len(lines), strings.Join(names, "|"))

	return sb.String()
}

func parseArbiterResponse(response string) (*EvaluationResult, error) {
	response = strings.TrimSpace(response)

	var parsed struct {
		SelectedService string `json:"selected_service"`
		FinalText       string `json:"final_text"`
		Reasoning       string `json:"reasoning"`
	}

	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse arbiter response as JSON: %w", err)
	}

	return &EvaluationResult{
		SelectedService: strings.TrimSpace(parsed.SelectedService),
		Text:            parsed.FinalText,
		IsComposite:     parsed.SelectedService == "composite",
		Reasoning:       parsed.Reasoning,
	}, nil
}

// resolve replaces the text of a selected service by the service's own
// output and checks the line count of a composite.
func resolve(res *EvaluationResult, lines int, results []translator.ServiceResult) (*EvaluationResult, error) {
	if res.IsComposite {
		composed, err := postprocess.StripLineNumbers(res.Text, lines)
		if err != nil {
			return nil, fmt.Errorf("arbiter composite unusable: %w", err)
		}
		res.Text = strings.Join(composed, "\n")
		return res, nil
	}

	for _, r := range results {
		if r.ServiceName == res.SelectedService {
			res.Text = r.TranslatedText
			return res, nil
		}
	}
	return nil, fmt.Errorf("arbiter selected unknown service %q", res.SelectedService)
}
