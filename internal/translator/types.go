// Package translator holds the services that turn extracted subtitle text
// into a translation with the same number of lines.
package translator

import (
	"context"
	"time"
)

// ServiceConfig is the per-service section of the configuration file.
type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

// TranslateRequest carries the extracted text, one sentence per line.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

// TranslationService translates a whole request. The translated text must
// keep the line count of the request text.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	// IsAvailable reports whether the service can be called at all, such as
	// a missing API key or an unreachable server.
	IsAvailable(ctx context.Context) error
}

// Interactive is implemented by services that wait for a person. Calls to
// them are not bounded by a service timeout.
type Interactive interface {
	Interactive() bool
}
