package internal

import "time"

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job records one subtitle translation run.
type Job struct {
	ID          string    `json:"id"`
	InputFile   string    `json:"input_file"`
	OutputFile  string    `json:"output_file"`
	Fingerprint string    `json:"fingerprint"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	ServiceUsed string    `json:"service_used"`
	Entries     int       `json:"entries"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
