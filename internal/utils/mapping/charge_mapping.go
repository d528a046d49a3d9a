package mapping

import (
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelCharge converts a domain Charge to a model Charge
func ToModelCharge(d domain.Charge) models.Charge {
	return models.Charge{
		ChargeID:         d.ChargeID,
		AssociationID:    d.AssociationID,
		UnitID:           d.UnitID,
		AssessmentTypeID: d.AssessmentTypeID,
		Description:      d.Description,
		TotalAmount:      d.TotalAmount,
		PaidAmount:       d.PaidAmount,
		BalanceDue:       d.BalanceDue,
		Status:           models.ChargeStatus(d.Status),
		DueDate:          d.DueDate,
		GLEntryID:        toNullString(d.GLEntryID),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCharge converts a model Charge to a domain Charge
func ToDomainCharge(m models.Charge) domain.Charge {
	return domain.Charge{
		ChargeID:         m.ChargeID,
		AssociationID:    m.AssociationID,
		UnitID:           m.UnitID,
		AssessmentTypeID: m.AssessmentTypeID,
		Description:      m.Description,
		TotalAmount:      m.TotalAmount,
		PaidAmount:       m.PaidAmount,
		BalanceDue:       m.BalanceDue,
		Status:           domain.ChargeStatus(m.Status),
		DueDate:          m.DueDate,
		GLEntryID:        fromNullString(m.GLEntryID),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainChargeSlice converts a slice of model Charges to domain Charges
func ToDomainChargeSlice(ms []models.Charge) []domain.Charge {
	ds := make([]domain.Charge, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCharge(m)
	}
	return ds
}
