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
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/valpere/subtran/internal/subtitle"
	"github.com/valpere/subtran/internal/translator"
	"github.com/valpere/subtran/internal/validator"
)

var (
	alignTranslation string
	alignOutput      string
)

var alignCmd = &cobra.Command{
	Use:   "align <file.srt>",
	Short: "Align a prepared translation onto a subtitle file",
	Long: `Distribute a translation of the text written by "subtran extract" over the
entries of the subtitle file. The translation must have one line per source
line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		targetLang, err := canonicalLang(cfg.TargetLang)
		if err != nil {
			return err
		}
		if targetLang == "auto" {
			targetLang = ""
		}

		entries, source, err := loadSubtitles(args[0])
		if err != nil {
			return err
		}

		file := translator.NewFileService(alignTranslation)
		res, err := file.Translate(ctx, translator.ServiceConfig{}, translator.TranslateRequest{
			Text:       source,
			TargetLang: targetLang,
		})
		if err != nil {
			return err
		}

		if err := validator.New().CheckTranslation(source, res.TranslatedText, targetLang); err != nil {
			if !errors.Is(err, validator.ErrWrongLanguage) {
				return err
			}
			slog.Warn("translation may be in the wrong language", "detail", err)
		}

		out := alignOutput
		if out == "" {
			out = subtitle.OutputPath(args[0], targetLang, cfg.OutputDir)
		}

		db, err := openStore(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		sourceLang, err := resolveSourceLang(cfg.SourceLang, source)
		if err != nil {
			slog.Warn("source language unknown, translation memory skipped", "error", err)
			sourceLang = ""
		}

		job := newSubtitleJob(ctx, db, args[0], out, entries, source, sourceLang, targetLang)
		if err := job.finish(ctx, res.TranslatedText, file.Name(), cmd.ErrOrStderr()); err != nil {
			return err
		}

		if !cfg.NoCache && targetLang != "" && sourceLang != "" {
			if err := db.SaveToMemory(ctx, source, sourceLang, targetLang, res.TranslatedText, file.Name()); err != nil {
				return fmt.Errorf("failed to save translation memory: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringVar(&alignTranslation, "translation", "", "File with the translated text (required)")
	alignCmd.Flags().StringVarP(&alignOutput, "output", "o", "", "Output file (default <file>.<lang>.srt)")
	alignCmd.Flags().StringP("target", "t", "", "Target language code, used for the output name")
	alignCmd.Flags().StringP("source", "s", "auto", "Source language code, used for translation memory")
	alignCmd.Flags().String("output-dir", "", "Directory for the translated file (default: next to the input)")
	alignCmd.Flags().Bool("no-cache", false, "Do not store the translation in translation memory")

	alignCmd.MarkFlagRequired("translation")
}
