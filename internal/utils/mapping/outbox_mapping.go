package mapping

import (
	"encoding/json"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelOutboxTask converts a domain OutboxTask to a model OutboxTask
func ToModelOutboxTask(d domain.OutboxTask) models.OutboxTask {
	return models.OutboxTask{
		TaskID:        d.TaskID,
		AssociationID: d.AssociationID,
		TaskType:      string(d.TaskType),
		Payload:       []byte(d.Payload),
		Status:        models.OutboxStatus(d.Status),
		Attempts:      d.Attempts,
		LastError:     d.LastError,
		CreatedAt:     d.CreatedAt,
		SentAt:        toNullTime(d.SentAt),
	}
}

// ToDomainOutboxTask converts a model OutboxTask to a domain OutboxTask
func ToDomainOutboxTask(m models.OutboxTask) domain.OutboxTask {
	return domain.OutboxTask{
		TaskID:        m.TaskID,
		AssociationID: m.AssociationID,
		TaskType:      domain.OutboxTaskType(m.TaskType),
		Payload:       json.RawMessage(m.Payload),
		Status:        domain.OutboxStatus(m.Status),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		CreatedAt:     m.CreatedAt,
		SentAt:        fromNullTime(m.SentAt),
	}
}

// ToDomainOutboxTaskSlice converts a slice of model tasks to domain tasks
func ToDomainOutboxTaskSlice(ms []models.OutboxTask) []domain.OutboxTask {
	ds := make([]domain.OutboxTask, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOutboxTask(m)
	}
	return ds
}
