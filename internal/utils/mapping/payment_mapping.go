package mapping

import (
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:       d.PaymentID,
		AssociationID:   d.AssociationID,
		UnitID:          d.UnitID,
		Amount:          d.Amount,
		AppliedAmount:   d.AppliedAmount,
		UnappliedAmount: d.UnappliedAmount,
		Status:          models.PaymentStatus(d.Status),
		Method:          string(d.Method),
		Reference:       d.Reference,
		ReceivedDate:    d.ReceivedDate,
		GLEntryID:       toNullString(d.GLEntryID),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:       m.PaymentID,
		AssociationID:   m.AssociationID,
		UnitID:          m.UnitID,
		Amount:          m.Amount,
		AppliedAmount:   m.AppliedAmount,
		UnappliedAmount: m.UnappliedAmount,
		Status:          domain.PaymentStatus(m.Status),
		Method:          domain.PaymentMethod(m.Method),
		Reference:       m.Reference,
		ReceivedDate:    m.ReceivedDate,
		GLEntryID:       fromNullString(m.GLEntryID),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts a slice of model Payments to domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}

// ToModelPaymentApplication converts a domain PaymentApplication to a model PaymentApplication
func ToModelPaymentApplication(d domain.PaymentApplication) models.PaymentApplication {
	return models.PaymentApplication{
		ApplicationID: d.ApplicationID,
		PaymentID:     d.PaymentID,
		ChargeID:      d.ChargeID,
		Amount:        d.Amount,
		AppliedAt:     d.AppliedAt,
	}
}

// ToDomainPaymentApplication converts a model PaymentApplication to a domain PaymentApplication
func ToDomainPaymentApplication(m models.PaymentApplication) domain.PaymentApplication {
	return domain.PaymentApplication{
		ApplicationID: m.ApplicationID,
		PaymentID:     m.PaymentID,
		ChargeID:      m.ChargeID,
		Amount:        m.Amount,
		AppliedAt:     m.AppliedAt,
	}
}

// ToDomainPaymentApplicationSlice converts model applications to domain applications
func ToDomainPaymentApplicationSlice(ms []models.PaymentApplication) []domain.PaymentApplication {
	ds := make([]domain.PaymentApplication, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPaymentApplication(m)
	}
	return ds
}
