package refiner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func refinerServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "llama3.1:8b" {
			t.Errorf("expected model 'llama3.1:8b', got %q", req.Model)
		}
		if req.Stream != false {
			t.Error("expected stream=false")
		}

		json.NewEncoder(w).Encode(ollamaResponse{Response: response})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOllamaRefiner_New(t *testing.T) {
	refiner := NewOllamaRefiner("llama3.1:8b", "http://localhost:11434")

	if refiner == nil {
		t.Fatal("expected non-nil refiner")
	}
	if refiner.model != "llama3.1:8b" {
		t.Errorf("expected model 'llama3.1:8b', got %q", refiner.model)
	}
	if refiner.baseURL != "http://localhost:11434" {
		t.Errorf("expected baseURL 'http://localhost:11434', got %q", refiner.baseURL)
	}
	if refiner.client == nil {
		t.Error("expected non-nil HTTP client")
	}
}

func TestOllamaRefiner_Refine_Success(t *testing.T) {
	server := refinerServer(t, "1. Hello, world.\n2. This is the second line.")
	refiner := NewOllamaRefiner("llama3.1:8b", server.URL)

	result, err := refiner.Refine(context.Background(), "de", "en", "Hallo Welt.\nDas ist die zweite Zeile.", "Hello world.\nThat is the second line.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Hello, world.\nThis is the second line." {
		t.Errorf("unexpected refined text: %q", result)
	}
}

func TestOllamaRefiner_Refine_ReturnsEmpty(t *testing.T) {
	server := refinerServer(t, "")
	refiner := NewOllamaRefiner("llama3.1:8b", server.URL)

	result, err := refiner.Refine(context.Background(), "de", "en", "Hallo", "Draft translation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// When response is empty, should return draft
	if result != "Draft translation" {
		t.Errorf("expected original draft when response empty, got %q", result)
	}
}

func TestOllamaRefiner_Refine_BrokenNumbering(t *testing.T) {
	server := refinerServer(t, "1. Hello, world. This is the second line.")
	refiner := NewOllamaRefiner("llama3.1:8b", server.URL)

	_, err := refiner.Refine(context.Background(), "de", "en", "Hallo Welt.\nZweite Zeile.", "Hello world.\nSecond line.")
	if err == nil {
		t.Error("expected error when a line goes missing")
	}
}

func TestOllamaRefiner_Refine_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	refiner := NewOllamaRefiner("llama3.1:8b", server.URL)
	_, err := refiner.Refine(context.Background(), "de", "en", "Hallo", "Hello")
	if err == nil {
		t.Error("expected error for status 502")
	}
}

func TestBuildRefinementPrompt(t *testing.T) {
	prompt := buildRefinementPrompt("de", "en", "Hallo Welt.\nZweite Zeile.", "Hello world.\nSecond line.")

	for _, want := range []string{"1. Hallo Welt.", "2. Second line.", "exactly 2 lines"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestRefinerInterface(t *testing.T) {
	// Verify OllamaRefiner satisfies the Refiner interface
	var _ Refiner = (*OllamaRefiner)(nil)
}
