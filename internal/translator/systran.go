package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/subtran/internal/chunker"
)

const (
	defaultSystranURL   = "https://api-systran-systran-translation-v1.p.rapidapi.com"
	systranRapidAPIHost = "api-systran-systran-translation-v1.p.rapidapi.com"

	systranBatchLines = 50
	systranBatchChars = 10000
)

// SystranService sends the non-empty lines of each batch as separate inputs
// and gets one output per input back.
type SystranService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSystranService(apiKey string) *SystranService {
	return &SystranService{
		apiKey:  apiKey,
		baseURL: defaultSystranURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" && cfg.APIKey == "" {
		result.Error = "Systran API key required"
		return result, fmt.Errorf("Systran API key required")
	}

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	baseURL := s.baseURL
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	lines := strings.Split(req.Text, "\n")
	out := make([]string, 0, len(lines))

	for _, batch := range chunker.Lines(lines, systranBatchChars, systranBatchLines) {
		translated, err := s.translateBatch(ctx, apiKey, baseURL, req, batch)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}
		out = append(out, translated...)
	}

	result.TranslatedText = strings.Join(out, "\n")

	return result, nil
}

// translateBatch translates the non-empty lines of batch; empty lines stay
// empty.
func (s *SystranService) translateBatch(ctx context.Context, apiKey, baseURL string, req TranslateRequest, batch []string) ([]string, error) {
	out := make([]string, len(batch))
	var inputs []string
	var positions []int
	for i, line := range batch {
		if strings.TrimSpace(line) == "" {
			continue
		}
		inputs = append(inputs, line)
		positions = append(positions, i)
	}
	if len(inputs) == 0 {
		return out, nil
	}

	systranReq := map[string]interface{}{
		"input":  inputs,
		"target": req.TargetLang,
		"format": "text",
	}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		systranReq["source"] = req.SourceLang
	}

	jsonData, err := json.Marshal(systranReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/translation/text/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", systranRapidAPIHost)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
		} `json:"outputs"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&systranResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(systranResp.Outputs) != len(inputs) {
		return nil, fmt.Errorf("expected %d outputs, got %d", len(inputs), len(systranResp.Outputs))
	}

	for i, o := range systranResp.Outputs {
		out[positions[i]] = strings.Join(strings.Fields(o.Output), " ")
	}
	return out, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}
