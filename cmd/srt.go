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
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/valpere/subtran/internal"
	"github.com/valpere/subtran/internal/align"
	"github.com/valpere/subtran/internal/proportional"
	"github.com/valpere/subtran/internal/store"
	"github.com/valpere/subtran/internal/subtitle"
	"github.com/valpere/subtran/internal/validator"
)

var srtCmd = &cobra.Command{
	Use:   "srt <file.srt>",
	Short: "Translate an SRT subtitle file",
	Long: `Translate an SRT subtitle file and write <file>.<lang>.srt next to it
(or into --output-dir). Index and timing of every entry are kept.

Providers:
  - manual  the text is written to <file>.source.txt; paste its translation
            into $EDITOR (--editor) or stdin. The line count must match.
  - auto    the services listed in --services run in parallel and the
            first valid result in that order is used, or the one
            chosen by the Ollama model with --arbiter.

--refine passes the translation through the Ollama model once more for
natural phrasing; its answer is used only if it keeps every line.

Available services for auto:
  - google      Google Cloud Translation (google.credentials or google.api_key)
  - systran     Systran Translate (systran.api_key)
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (openrouter.api_key)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stderr := cmd.ErrOrStderr()

		targetLang, err := canonicalLang(cfg.TargetLang)
		if err != nil {
			return err
		}
		if targetLang == "" || targetLang == "auto" {
			return fmt.Errorf("target language is required (--target or target_lang in config)")
		}

		entries, source, err := loadSubtitles(args[0])
		if err != nil {
			return err
		}

		sourceLang, err := resolveSourceLang(cfg.SourceLang, source)
		if err != nil {
			return err
		}

		db, err := openStore(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		job := newSubtitleJob(ctx, db, args[0], subtitle.OutputPath(args[0], targetLang, cfg.OutputDir), entries, source, sourceLang, targetLang)

		if !cfg.NoCache {
			if cached, ok := lookupMemory(ctx, db, source, sourceLang, targetLang); ok {
				fmt.Fprintf(stderr, "Using cached translation\n")
				return job.finish(ctx, cached, "cache", stderr)
			}
		}

		services, err := buildServices(cfg, subtitle.SourceTextPath(args[0]), cmd.InOrStdin(), stderr)
		if err != nil {
			job.fail(ctx, "", err)
			return err
		}

		target, service, err := translateText(ctx, cfg, services, source, sourceLang, targetLang)
		if err != nil {
			job.fail(ctx, "", err)
			return err
		}

		if err := job.finish(ctx, target, service, stderr); err != nil {
			return err
		}

		if !cfg.NoCache {
			if err := db.SaveToMemory(ctx, source, sourceLang, targetLang, target, service); err != nil {
				slog.Warn("failed to save translation memory", "error", err)
			}
		}
		return nil
	},
}

// loadSubtitles reads and cleans path and extracts the text to translate.
func loadSubtitles(path string) ([]subtitle.Entry, string, error) {
	entries, err := subtitle.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("no subtitles found in %s", path)
	}

	subtitle.Clean(entries)
	source := subtitle.ExtractText(entries)
	slog.Debug("extracted subtitle text", "entries", len(entries), "lines", len(proportional.SplitLines(source)))
	return entries, source, nil
}

// lookupMemory returns a cached translation of source that can still be
// aligned. A cached text with the wrong line count is invalidated.
func lookupMemory(ctx context.Context, db *store.Store, source, sourceLang, targetLang string) (string, bool) {
	cached, found, err := db.GetCachedTranslation(ctx, source, sourceLang, targetLang)
	if err != nil {
		slog.Warn("translation memory lookup failed", "error", err)
		return "", false
	}
	if !found {
		return "", false
	}
	if err := validator.CheckLines(source, cached); err != nil {
		slog.Warn("ignoring cached translation", "error", err)
		if err := db.InvalidateTranslation(ctx, source, sourceLang, targetLang); err != nil {
			slog.Warn("failed to invalidate cached translation", "error", err)
		}
		return "", false
	}
	return cached, true
}

// subtitleJob carries one subtitle file through alignment and records the
// outcome in the job history.
type subtitleJob struct {
	db      *store.Store
	id      string
	output  string
	entries []subtitle.Entry
	source  string
}

func newSubtitleJob(ctx context.Context, db *store.Store, input, output string, entries []subtitle.Entry, source, sourceLang, targetLang string) *subtitleJob {
	j := &subtitleJob{db: db, output: output, entries: entries, source: source}
	if db == nil {
		return j
	}

	id, err := db.CreateJob(ctx, internal.Job{
		InputFile:   input,
		OutputFile:  output,
		Fingerprint: store.Fingerprint(source),
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Entries:     len(entries),
	})
	if err != nil {
		slog.Warn("failed to record job", "error", err)
		return j
	}
	j.id = id
	return j
}

// finish aligns target onto the entries and writes the output file.
func (j *subtitleJob) finish(ctx context.Context, target, service string, w io.Writer) error {
	aligned, err := align.Translate(j.entries, j.source, target)
	if err != nil {
		err = newAlignError(err, j.source, j.entries)
		j.fail(ctx, service, err)
		return err
	}

	if err := subtitle.WriteFile(j.output, aligned); err != nil {
		err = fmt.Errorf("failed to write output file: %w", err)
		j.fail(ctx, service, err)
		return err
	}

	if j.id != "" {
		if err := j.db.CompleteJob(ctx, j.id, service); err != nil {
			slog.Warn("failed to update job", "id", j.id, "error", err)
		}
	}

	fmt.Fprintf(w, "Wrote %s (%d entries, translated by %s)\n", j.output, len(aligned), service)
	return nil
}

func (j *subtitleJob) fail(ctx context.Context, service string, cause error) {
	if j.id == "" {
		return
	}
	if err := j.db.FailJob(ctx, j.id, service, cause); err != nil {
		slog.Warn("failed to update job", "id", j.id, "error", err)
	}
}

func init() {
	rootCmd.AddCommand(srtCmd)

	srtCmd.Flags().StringP("target", "t", "", "Target language code (required)")
	srtCmd.Flags().StringP("source", "s", "auto", "Source language code")
	srtCmd.Flags().String("output-dir", "", "Directory for the translated file (default: next to the input)")
	srtCmd.Flags().StringP("provider", "p", "manual", "Translation provider: manual or auto")
	srtCmd.Flags().StringSlice("services", []string{"google"}, "Services for the auto provider (comma-separated)")
	srtCmd.Flags().Bool("no-cache", false, "Disable translation memory cache")
	srtCmd.Flags().String("editor", "", "Editor command for the manual provider (default: read stdin)")
	srtCmd.Flags().Bool("arbiter", false, "Let the Ollama model choose between several service results")
	srtCmd.Flags().Bool("refine", false, "Polish the chosen translation with the Ollama model")
}
