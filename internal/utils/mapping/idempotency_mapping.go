package mapping

import (
	"encoding/json"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelIdempotencyRecord converts a domain IdempotencyRecord to a model record
func ToModelIdempotencyRecord(d domain.IdempotencyRecord) models.IdempotencyRecord {
	return models.IdempotencyRecord{
		AssociationID:  d.AssociationID,
		Operation:      d.Operation,
		IdempotencyKey: d.IdempotencyKey,
		Status:         models.IdempotencyStatus(d.Status),
		Result:         []byte(d.Result),
		CreatedAt:      d.CreatedAt,
		CompletedAt:    toNullTime(d.CompletedAt),
	}
}

// ToDomainIdempotencyRecord converts a model IdempotencyRecord to a domain record
func ToDomainIdempotencyRecord(m models.IdempotencyRecord) domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		AssociationID:  m.AssociationID,
		Operation:      m.Operation,
		IdempotencyKey: m.IdempotencyKey,
		Status:         domain.IdempotencyStatus(m.Status),
		Result:         json.RawMessage(m.Result),
		CreatedAt:      m.CreatedAt,
		CompletedAt:    fromNullTime(m.CompletedAt),
	}
}
