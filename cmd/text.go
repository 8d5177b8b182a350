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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/subtran/internal/markdown"
	"github.com/valpere/subtran/internal/proportional"
)

var (
	textSourceFile string
	textTargetFile string
	textOutput     string
	textHTML       bool
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Pair a text with its translation line by line",
	Long: `Pair a source text with its translation line by line and render the pairs
as a Markdown table (or HTML with --html). Both texts must have the same
number of lines.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readText(textSourceFile)
		if err != nil {
			return err
		}
		target, err := readText(textTargetFile)
		if err != nil {
			return err
		}

		pairs, err := proportional.Pair(source, target)
		if err != nil {
			return err
		}

		out := markdown.PairsTable(pairs)
		if textHTML {
			out = markdown.ToHTML([]byte(out))
		}

		if textOutput == "" || textOutput == "-" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(textOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(textOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d pairs to %s\n", len(pairs), textOutput)
		return nil
	},
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringVar(&textSourceFile, "source-file", "", "Source text file (required)")
	textCmd.Flags().StringVar(&textTargetFile, "target-file", "", "Translated text file (required)")
	textCmd.Flags().StringVarP(&textOutput, "output", "o", "", "Output file (default stdout)")
	textCmd.Flags().BoolVar(&textHTML, "html", false, "Render the table as HTML")

	textCmd.MarkFlagRequired("source-file")
	textCmd.MarkFlagRequired("target-file")
}
