/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/valpere/subtran/internal/align"
	"github.com/valpere/subtran/internal/arbiter"
	"github.com/valpere/subtran/internal/config"
	"github.com/valpere/subtran/internal/detector"
	"github.com/valpere/subtran/internal/diagnose"
	"github.com/valpere/subtran/internal/orchestrator"
	"github.com/valpere/subtran/internal/proportional"
	"github.com/valpere/subtran/internal/refiner"
	"github.com/valpere/subtran/internal/store"
	"github.com/valpere/subtran/internal/subtitle"
	"github.com/valpere/subtran/internal/translator"
)

// canonicalLang validates a BCP 47 language code and returns its canonical
// form. "auto" is passed through.
func canonicalLang(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || code == "auto" {
		return code, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// resolveSourceLang returns the configured source language or, for "auto",
// the language detected in text.
func resolveSourceLang(configured, text string) (string, error) {
	lang, err := canonicalLang(configured)
	if err != nil {
		return "", err
	}
	if lang != "" && lang != "auto" {
		return lang, nil
	}

	detected, ok := detector.New().DetectISO(text)
	if !ok {
		return "", fmt.Errorf("could not detect source language, set it with --source")
	}
	slog.Info("detected source language", "lang", detected)
	return detected, nil
}

// buildServices constructs the translation services selected by the
// configured provider. sourcePath is where the manual provider leaves the
// text to translate.
func buildServices(cfg *config.Config, sourcePath string, in io.Reader, out io.Writer) ([]translator.TranslationService, error) {
	switch cfg.Provider {
	case "", "manual":
		return []translator.TranslationService{
			translator.NewManualService(sourcePath, cfg.Editor, in, out),
		}, nil
	case "auto":
	default:
		return nil, fmt.Errorf("unknown provider %q (use manual or auto)", cfg.Provider)
	}

	var list []translator.TranslationService
	for _, name := range cfg.Services {
		switch strings.TrimSpace(name) {
		case "google":
			list = append(list, translator.NewGoogleService(out))
		case "ollama":
			list = append(list, translator.NewOllamaTranslator(cfg.Ollama.BaseURL, cfg.Ollama.Model))
		case "openrouter":
			list = append(list, translator.NewOpenRouterService(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, nil))
		case "systran":
			list = append(list, translator.NewSystranService(cfg.Systran.APIKey))
		default:
			slog.Warn("unknown service, skipping", "service", name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

// translateText runs services over source and returns the preferred
// translation and the name of the service that produced it. With several
// results the arbiter may choose; the refiner may polish the choice.
func translateText(ctx context.Context, cfg *config.Config, services []translator.TranslationService, source, sourceLang, targetLang string) (string, string, error) {
	orch := orchestrator.New(services, orchestrator.OrchestratorConfig{
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
		ServiceConfigs: map[string]translator.ServiceConfig{
			"google":     cfg.Google,
			"ollama":     cfg.Ollama,
			"openrouter": cfg.OpenRouter,
			"systran":    cfg.Systran,
		},
	})

	result := orch.Execute(ctx, translator.ServiceConfig{}, translator.TranslateRequest{
		Text:       source,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})

	best := result.Best()
	if best == nil {
		return "", "", fmt.Errorf("all translation services failed: %w", errors.Join(result.Errors...))
	}
	if warning, ok := best.Metadata["validation"]; ok {
		slog.Warn("translation may be in the wrong language", "service", best.ServiceName, "detail", warning)
	}
	slog.Info("using translation", "service", best.ServiceName, "latency", best.Latency, "services_ok", result.Succeeded, "services_failed", result.Failed)

	text, service := best.TranslatedText, best.ServiceName

	if cfg.Arbiter && len(result.Results) > 1 {
		arb := arbiter.NewOllamaArbiter(cfg.Ollama.Model, cfg.Ollama.BaseURL)
		eval, err := arb.Evaluate(ctx, source, sourceLang, targetLang, result.Results)
		if err != nil {
			slog.Warn("arbiter failed, using first result", "error", err)
		} else {
			text, service = eval.Text, eval.SelectedService
			slog.Info("arbiter selected translation", "service", service, "reasoning", eval.Reasoning)
		}
	}

	if cfg.Refine {
		ref := refiner.NewOllamaRefiner(cfg.Ollama.Model, cfg.Ollama.BaseURL)
		refined, err := ref.Refine(ctx, sourceLang, targetLang, source, text)
		if err != nil {
			slog.Warn("refiner failed, using draft", "error", err)
		} else {
			text, service = refined, service+"+refined"
		}
	}

	return text, service, nil
}

// openStore opens the database at path, creating its directory.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// walkedText is the entry text alignment walks over.
func walkedText(entries []subtitle.Entry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, "\n")
}

// alignError wraps an alignment failure with the context a user needs to
// act on it.
type alignError struct {
	err   error
	drift string
}

func (e *alignError) Error() string { return e.err.Error() }
func (e *alignError) Unwrap() error { return e.err }

func newAlignError(err error, source string, entries []subtitle.Entry) error {
	ae := &alignError{err: err}
	if errors.Is(err, align.ErrSyncDefect) {
		ae.drift = diagnose.WordDrift(source, walkedText(entries))
	}
	return ae
}

// reportError prints err with a hint on how to proceed.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var mismatch *proportional.LineCountMismatchError
	var degenerate *proportional.DegenerateSourceLineError
	switch {
	case errors.As(err, &mismatch):
		fmt.Fprintf(w, "The translation must have exactly %d lines, one per source line. Re-paste a translation with %d lines.\n",
			mismatch.Expected, mismatch.Expected)
	case errors.As(err, &degenerate):
		fmt.Fprintf(w, "Source line %d has no words to distribute the translation over. Remove it from the source text and try again.\n",
			degenerate.Line)
	case errors.Is(err, align.ErrSyncDefect), errors.Is(err, proportional.ErrInvariant):
		fmt.Fprintln(w, "This is a bug in subtran, please report it together with the subtitle file.")
		var ae *alignError
		if errors.As(err, &ae) && ae.drift != "" {
			fmt.Fprintf(w, "Word drift between extracted and aligned text:\n%s\n", ae.drift)
		}
	}
}
