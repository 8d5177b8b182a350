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

	"github.com/spf13/cobra"

	"github.com/valpere/subtran/internal/subtitle"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file.srt>",
	Short: "Write the text of a subtitle file for translation",
	Long: `Clean an SRT file and write its text, roughly one sentence per line, to
<file>.source.txt (or -o, "-" for stdout). Translate it with any tool that
keeps the line count, then run "subtran align".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, source, err := loadSubtitles(args[0])
		if err != nil {
			return err
		}

		out := extractOutput
		if out == "" {
			out = subtitle.SourceTextPath(args[0])
		}
		if out == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), source)
			return nil
		}

		if err := os.WriteFile(out, []byte(source+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default <file>.source.txt, - for stdout)")
}
