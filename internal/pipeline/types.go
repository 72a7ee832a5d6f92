package pipeline

import (
	"runtime"
	"time"
)

// PipelineConfig holds configuration for a pipeline instance
type PipelineConfig struct {
	Name        string
	WorkerCount int // Number of concurrent workers per phase
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig(name string) PipelineConfig {
	return PipelineConfig{
		Name:        name,
		WorkerCount: runtime.NumCPU(),
	}
}

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// PipelineRun tracks a single execution of a pipeline for a reference date
type PipelineRun struct {
	ID                  string         `json:"id"`
	PipelineName        string         `json:"pipeline_name"`
	ReferenceDate       time.Time      `json:"reference_date"`
	Status              PipelineStatus `json:"status"`
	TotalProducts       int            `json:"total_products"`
	TotalBatches        int            `json:"total_batches"`
	AssessedBatches     int            `json:"assessed_batches"`
	UnassessableBatches int            `json:"unassessable_batches"`
	StartedAt           time.Time      `json:"started_at"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage        string         `json:"error_message,omitempty"`
}

// Duration returns how long the run took, or zero while it is still running.
func (r *PipelineRun) Duration() time.Duration {
	if r == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
