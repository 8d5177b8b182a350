package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOllamaTranslator_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"response": "1. It's about mountain bikers.\n2. Who is allowed here?",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := &OllamaTranslator{
		baseURL: server.URL,
		model:   "llama3.2",
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Es geht um Mountainbiker.\nWer darf hier?",
		SourceLang: "de",
		TargetLang: "en",
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result.TranslatedText != "It's about mountain bikers.\nWho is allowed here?" {
		t.Errorf("unexpected translation: %q", result.TranslatedText)
	}
	if result.Metadata["model"] != "llama3.2" {
		t.Errorf("expected model in metadata, got %v", result.Metadata)
	}
}

func TestOllamaTranslator_Translate_NumberedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		prompt := req["prompt"].(string)
		if !strings.Contains(prompt, "1. Hallo\n2. Welt\n") {
			t.Errorf("expected numbered lines in prompt, got %q", prompt)
		}
		if req["model"] != "gemma3:12b" {
			t.Errorf("expected model from config, got %v", req["model"])
		}
		resp := map[string]interface{}{"response": "<think>hmm</think>\n1. Hello\n2. World"}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := &OllamaTranslator{
		baseURL: "http://unused",
		model:   "llama3.2",
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{BaseURL: server.URL, Model: "gemma3:12b"}, TranslateRequest{
		Text:       "Hallo\nWelt",
		SourceLang: "auto",
		TargetLang: "en",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "Hello\nWorld" {
		t.Errorf("unexpected translation: %q", result.TranslatedText)
	}
}

func TestOllamaTranslator_Translate_Batches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		prompt := req["prompt"].(string)

		// Echo the numbered lines back.
		var out []string
		for _, line := range strings.Split(prompt, "\n") {
			if len(line) > 2 && line[0] >= '0' && line[0] <= '9' {
				out = append(out, line)
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"response": strings.Join(out, "\n")})
	}))
	defer server.Close()

	svc := &OllamaTranslator{baseURL: server.URL, model: "m", client: server.Client()}

	lines := make([]string, ollamaBatchLines+5)
	for i := range lines {
		lines[i] = "Zeile"
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       strings.Join(lines, "\n"),
		TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	if got := strings.Count(result.TranslatedText, "\n") + 1; got != len(lines) {
		t.Errorf("expected %d lines, got %d", len(lines), got)
	}
}

func TestOllamaTranslator_Translate_BrokenNumbering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "1. Hello World"})
	}))
	defer server.Close()

	svc := &OllamaTranslator{baseURL: server.URL, model: "m", client: server.Client()}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hallo\nWelt",
		TargetLang: "en",
	})
	if err == nil {
		t.Fatal("expected error when a line is missing")
	}
	if result == nil || result.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestOllamaTranslator_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := &OllamaTranslator{
		baseURL: server.URL,
		model:   "llama3.2",
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "uk",
	})

	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestOllamaTranslator_IsAvailable_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := &OllamaTranslator{
		baseURL: server.URL,
		client:  server.Client(),
	}

	err := svc.IsAvailable(context.Background())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaTranslator_IsAvailable_NotRunning(t *testing.T) {
	svc := &OllamaTranslator{
		baseURL: "http://localhost:19999",
		client:  &http.Client{Timeout: 100 * time.Millisecond},
	}

	err := svc.IsAvailable(context.Background())
	if err == nil {
		t.Error("expected error when Ollama not available")
	}
}

func TestOllamaTranslator_Defaults(t *testing.T) {
	svc := NewOllamaTranslator("", "")

	if svc.Name() != "ollama" {
		t.Errorf("expected 'ollama', got %q", svc.Name())
	}
	if svc.baseURL != defaultOllamaURL || svc.model != defaultOllamaModel {
		t.Errorf("unexpected defaults: %q %q", svc.baseURL, svc.model)
	}
}
