package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/subtran/internal/chunker"
	"github.com/valpere/subtran/internal/postprocess"
)

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"

	// Hosted models handle larger batches than local ones.
	openRouterBatchLines = 40
	openRouterBatchChars = 4000
)

var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"qwen/qwen2.5-72b-instruct:free",
	"mistralai/mistral-nemo:free",
	"meta-llama/llama-3.1-8b-instruct:free",
}

// OpenRouterService translates numbered line batches with a hosted chat
// model. Each call picks one of the configured models at random.
type OpenRouterService struct {
	apiKey  string
	baseURL string
	models  []string
	client  *http.Client
}

func NewOpenRouterService(apiKey string, baseURL string, models []string) *OpenRouterService {
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	if len(models) == 0 {
		models = DefaultOpenRouterModels
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

func (s *OpenRouterService) getRandomModel() string {
	if len(s.models) == 0 {
		return DefaultOpenRouterModels[0]
	}
	return s.models[rand.Intn(len(s.models))]
}

func (s *OpenRouterService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" && cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}

	if apiKey == "" {
		result.Error = "OpenRouter API key required"
		return result, fmt.Errorf("OpenRouter API key required")
	}

	model := cfg.Model
	if model == "" {
		model = s.getRandomModel()
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
	var promptTokens, completionTokens int

	for _, batch := range chunker.Lines(lines, openRouterBatchChars, openRouterBatchLines) {
		translated, usage, err := s.translateBatch(ctx, apiKey, baseURL, model, sourceLang, req.TargetLang, batch, previous)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}
		out = append(out, translated...)
		previous = chunker.ExtractContext(strings.Join(translated, " "), 0)
		promptTokens += usage.PromptTokens
		completionTokens += usage.CompletionTokens
	}

	result.TranslatedText = strings.Join(out, "\n")
	result.Metadata = map[string]string{
		"model":             model,
		"prompt_tokens":     fmt.Sprintf("%d", promptTokens),
		"completion_tokens": fmt.Sprintf("%d", completionTokens),
	}

	return result, nil
}

type openRouterUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (s *OpenRouterService) translateBatch(ctx context.Context, apiKey, baseURL, model, sourceLang, targetLang string, batch []string, previous string) ([]string, openRouterUsage, error) {
	var usage openRouterUsage

	openrouterReq := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a professional subtitle translator."},
			{"role": "user", "content": buildNumberedPrompt(sourceLang, targetLang, batch, previous)},
		},
		"max_tokens": 4096,
	}

	jsonData, err := json.Marshal(openrouterReq)
	if err != nil {
		return nil, usage, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, usage, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	httpReq.Header.Set("X-Title", "subtran")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, usage, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, usage, fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)
	}

	var openrouterResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage openRouterUsage `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&openrouterResp); err != nil {
		return nil, usage, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(openrouterResp.Choices) == 0 {
		return nil, usage, fmt.Errorf("empty response from API")
	}

	translated, err := postprocess.StripLineNumbers(postprocess.Clean(openrouterResp.Choices[0].Message.Content), len(batch))
	if err != nil {
		return nil, usage, fmt.Errorf("model %s broke the line numbering: %w", model, err)
	}
	return translated, openrouterResp.Usage, nil
}

func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}
