package translator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	translate "cloud.google.com/go/translate"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/subtran/internal/chunker"
)

// Request limits of the Cloud Translation v2 API.
const (
	googleMaxSegments = 128
	googleMaxChars    = 30000
)

type googleClient interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
	Close() error
}

// GoogleService sends every line of the text as its own segment, so the
// translation has exactly as many lines as the source.
type GoogleService struct {
	progress  io.Writer
	newClient func(ctx context.Context, opts ...option.ClientOption) (googleClient, error)
}

// NewGoogleService returns the Google Cloud Translation service. Progress is
// drawn on progress when it is not nil.
func NewGoogleService(progress io.Writer) *GoogleService {
	return &GoogleService{
		progress: progress,
		newClient: func(ctx context.Context, opts ...option.ClientOption) (googleClient, error) {
			return translate.NewClient(ctx, opts...)
		},
	}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	topts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		sourceLangTag, err := language.Parse(req.SourceLang)
		if err != nil {
			result.Error = fmt.Sprintf("invalid source language: %v", err)
			return result, fmt.Errorf("invalid source language: %w", err)
		}
		topts.Source = sourceLangTag
	}

	opts := []option.ClientOption{}
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	client, err := s.newClient(ctx, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	lines := strings.Split(req.Text, "\n")
	out := make([]string, 0, len(lines))

	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions(len(lines),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(s.Name()),
			progressbar.OptionClearOnFinish())
	}

	for _, batch := range chunker.Lines(lines, googleMaxChars, googleMaxSegments) {
		translated, err := s.translateBatch(ctx, client, batch, targetLangTag, topts)
		if err != nil {
			result.Error = fmt.Sprintf("translation failed: %v", err)
			return result, fmt.Errorf("translation failed: %w", err)
		}
		out = append(out, translated...)
		if bar != nil {
			_ = bar.Add(len(batch))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	result.TranslatedText = strings.Join(out, "\n")

	return result, nil
}

// translateBatch translates the non-empty lines of batch; empty lines stay
// empty.
func (s *GoogleService) translateBatch(ctx context.Context, client googleClient, batch []string, target language.Tag, opts *translate.Options) ([]string, error) {
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

	translations, err := client.Translate(ctx, inputs, target, opts)
	if err != nil {
		return nil, err
	}
	if len(translations) != len(inputs) {
		return nil, fmt.Errorf("expected %d translations, got %d", len(inputs), len(translations))
	}
	for i, tr := range translations {
		// A segment must stay on one line.
		out[positions[i]] = strings.Join(strings.Fields(tr.Text), " ")
	}
	return out, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
