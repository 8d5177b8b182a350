package translator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/valpere/subtran/internal/proportional"
)

// ManualService puts a person in the loop: the source text is written to a
// file for them to paste into any translator, and the translation is read
// back from an editor buffer or, without an editor, from In until EOF.
type ManualService struct {
	SourcePath string
	Editor     string
	In         io.Reader
	Out        io.Writer

	run func(cmd *exec.Cmd) error
}

func NewManualService(sourcePath, editor string, in io.Reader, out io.Writer) *ManualService {
	return &ManualService{
		SourcePath: sourcePath,
		Editor:     editor,
		In:         in,
		Out:        out,
		run:        func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

func (s *ManualService) Name() string {
	return "manual"
}

func (s *ManualService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	lines := len(proportional.SplitLines(req.Text))

	if s.SourcePath != "" {
		if err := os.WriteFile(s.SourcePath, []byte(req.Text+"\n"), 0644); err != nil {
			result.Error = fmt.Sprintf("failed to write source text: %v", err)
			return result, fmt.Errorf("failed to write source text: %w", err)
		}
		fmt.Fprintf(s.Out, "Source text (%d lines) written to %s\n", lines, s.SourcePath)
	}

	var text string
	var err error
	if s.Editor != "" {
		fmt.Fprintf(s.Out, "Paste the %s translation into the editor, keeping all %d lines, then save and quit.\n", req.TargetLang, lines)
		text, err = s.fromEditor(ctx)
	} else {
		fmt.Fprintf(s.Out, "Paste the %s translation (%d lines), then press Ctrl-D:\n", req.TargetLang, lines)
		text, err = s.fromReader()
	}
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		result.Error = "no translation provided"
		return result, fmt.Errorf("no translation provided")
	}

	result.TranslatedText = text
	return result, nil
}

func (s *ManualService) fromEditor(ctx context.Context) (string, error) {
	f, err := os.CreateTemp("", "subtran-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create translation buffer: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	args := strings.Fields(s.Editor)
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := s.run(cmd); err != nil {
		return "", fmt.Errorf("editor %s failed: %w", args[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read translation buffer: %w", err)
	}
	return string(data), nil
}

func (s *ManualService) fromReader() (string, error) {
	if s.In == nil {
		return "", fmt.Errorf("no input to read the translation from")
	}
	data, err := io.ReadAll(s.In)
	if err != nil {
		return "", fmt.Errorf("failed to read translation: %w", err)
	}
	return string(data), nil
}

// Interactive keeps the orchestrator from timing out a person at the editor.
func (s *ManualService) Interactive() bool {
	return true
}

func (s *ManualService) IsAvailable(ctx context.Context) error {
	if s.Editor == "" && s.In == nil {
		return fmt.Errorf("manual translation needs an editor or an input stream")
	}
	return nil
}
