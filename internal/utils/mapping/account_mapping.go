package mapping

import (
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		AssociationID:   d.AssociationID,
		AccountNumber:   d.AccountNumber,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		Category:        d.Category,
		NormalDebit:     d.NormalDebit,
		ParentAccountID: toNullString(d.ParentAccountID),
		Description:     d.Description,
		Balance:         d.Balance,
		IsSystem:        d.IsSystem,
		IsActive:        d.IsActive,
		DeletedAt:       toNullTime(d.DeletedAt),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		AssociationID:   m.AssociationID,
		AccountNumber:   m.AccountNumber,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		Category:        m.Category,
		NormalDebit:     m.NormalDebit,
		ParentAccountID: fromNullString(m.ParentAccountID),
		Description:     m.Description,
		Balance:         m.Balance,
		IsSystem:        m.IsSystem,
		IsActive:        m.IsActive,
		DeletedAt:       fromNullTime(m.DeletedAt),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
