package translator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// FileService returns a translation that was prepared ahead of time.
type FileService struct {
	path string
}

func NewFileService(path string) *FileService {
	return &FileService{path: path}
}

func (s *FileService) Name() string {
	return "file"
}

func (s *FileService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read translation: %v", err)
		return result, fmt.Errorf("failed to read translation: %w", err)
	}

	result.TranslatedText = strings.TrimRight(strings.TrimPrefix(string(data), "\ufeff"), "\r\n")
	result.Metadata = map[string]string{"path": s.path}
	return result, nil
}

func (s *FileService) IsAvailable(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("translation file not available: %w", err)
	}
	return nil
}
