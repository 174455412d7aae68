package task

import (
	"context"
)

// TaskType defines the type of asynchronous task
type TaskType string

const (
	TaskTypeSummarize TaskType = "summarize" // Generate a call summary and notify the owner
)

// SummaryTask represents an asynchronous summarization task payload
type SummaryTask struct {
	Type       TaskType `json:"type"`
	CallID     string   `json:"call_id"`
	BusinessID string   `json:"business_id"`
	Transcript string   `json:"transcript"`
}

// Bus defines the interface for the task bus
type Bus interface {
	Publish(ctx context.Context, task SummaryTask) error
	Subscribe(ctx context.Context, handler func(SummaryTask)) error
}
