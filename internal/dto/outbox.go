package dto

import (
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// OutboxTaskResponse defines the data returned for a posting task.
type OutboxTaskResponse struct {
	TaskID    string                `json:"taskID"`
	TaskType  domain.OutboxTaskType `json:"taskType"`
	Status    domain.OutboxStatus   `json:"status"`
	Attempts  int                   `json:"attempts"`
	LastError string                `json:"lastError,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	SentAt    *time.Time            `json:"sentAt,omitempty"`
}

// ToOutboxTaskResponse converts a domain.OutboxTask to OutboxTaskResponse DTO.
func ToOutboxTaskResponse(t *domain.OutboxTask) OutboxTaskResponse {
	return OutboxTaskResponse{
		TaskID:    t.TaskID,
		TaskType:  t.TaskType,
		Status:    t.Status,
		Attempts:  t.Attempts,
		LastError: t.LastError,
		CreatedAt: t.CreatedAt,
		SentAt:    t.SentAt,
	}
}

// ListOutboxTasksParams defines query parameters for listing posting tasks.
type ListOutboxTasksParams struct {
	Status *string `form:"status"` // Optional status filter
	Limit  int     `form:"limit,default=50"`
}

// ListOutboxTasksResponse wraps a list of posting tasks.
type ListOutboxTasksResponse struct {
	Tasks []OutboxTaskResponse `json:"tasks"`
}

// ToListOutboxTasksResponse converts a slice of domain.OutboxTask to DTO.
func ToListOutboxTasksResponse(tasks []domain.OutboxTask) ListOutboxTasksResponse {
	list := make([]OutboxTaskResponse, len(tasks))
	for i, t := range tasks {
		list[i] = ToOutboxTaskResponse(&t)
	}
	return ListOutboxTasksResponse{Tasks: list}
}
