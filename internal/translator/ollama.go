package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/subtran/internal/chunker"
	"github.com/valpere/subtran/internal/postprocess"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.1:8b"

	// Small batches keep local models from merging or dropping lines.
	ollamaBatchLines = 20
	ollamaBatchChars = 2000
)

// OllamaTranslator asks a local model to translate numbered lines and maps
// the numbered answer back onto the lines of the source.
type OllamaTranslator struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaTranslator(baseURL, model string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

func (s *OllamaTranslator) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	model := cfg.Model
	if model == "" {
		model = s.model
	}
	baseURL := s.baseURL
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the detected language"
	}

	lines := strings.Split(req.Text, "\n")
	out := make([]string, 0, len(lines))
	var previous string

	for _, batch := range chunker.Lines(lines, ollamaBatchChars, ollamaBatchLines) {
		translated, err := s.translateBatch(ctx, baseURL, model, sourceLang, req.TargetLang, batch, previous)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}
		out = append(out, translated...)
		previous = chunker.ExtractContext(strings.Join(translated, " "), 0)
	}

	result.TranslatedText = strings.Join(out, "\n")
	result.Metadata = map[string]string{"model": model}

	return result, nil
}

func (s *OllamaTranslator) translateBatch(ctx context.Context, baseURL, model, sourceLang, targetLang string, batch []string, previous string) ([]string, error) {
	ollamaReq := map[string]interface{}{
		"model":  model,
		"prompt": buildNumberedPrompt(sourceLang, targetLang, batch, previous),
		"stream": false,
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	translated, err := postprocess.StripLineNumbers(postprocess.Clean(ollamaResp.Response), len(batch))
	if err != nil {
		return nil, fmt.Errorf("model broke the line numbering: %w", err)
	}
	return translated, nil
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// buildNumberedPrompt asks for a line-by-line translation of batch. previous
// is translated text of the preceding batch, given for continuity.
func buildNumberedPrompt(sourceLang, targetLang string, batch []string, previous string) string {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, `Translate the following numbered subtitle lines from %s to %s.
Keep the numbering: answer with exactly %d lines, one translated line per number.
Do not merge or split lines. Only respond with the numbered translation, nothing else.
`, sourceLang, targetLang, len(batch))
	if previous != "" {
		fmt.Fprintf(&prompt, "\nThe preceding translated text, for context only: %q\n", previous)
	}
	prompt.WriteString("\n")
	prompt.WriteString(postprocess.NumberLines(batch))
	return prompt.String()
}
