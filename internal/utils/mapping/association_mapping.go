package mapping

import (
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelAssociation converts a domain Association to a model Association
func ToModelAssociation(d domain.Association) models.Association {
	return models.Association{
		AssociationID: d.AssociationID,
		Name:          d.Name,
		Timezone:      d.Timezone,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAssociation converts a model Association to a domain Association
func ToDomainAssociation(m models.Association) domain.Association {
	return domain.Association{
		AssociationID: m.AssociationID,
		Name:          m.Name,
		Timezone:      m.Timezone,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelUnit converts a domain Unit to a model Unit
func ToModelUnit(d domain.Unit) models.Unit {
	return models.Unit{
		UnitID:        d.UnitID,
		AssociationID: d.AssociationID,
		UnitNumber:    d.UnitNumber,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUnit converts a model Unit to a domain Unit
func ToDomainUnit(m models.Unit) domain.Unit {
	return domain.Unit{
		UnitID:        m.UnitID,
		AssociationID: m.AssociationID,
		UnitNumber:    m.UnitNumber,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUnitSlice converts a slice of model Units to domain Units
func ToDomainUnitSlice(ms []models.Unit) []domain.Unit {
	ds := make([]domain.Unit, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUnit(m)
	}
	return ds
}

// ToModelAssessmentType converts a domain AssessmentType to a model AssessmentType
func ToModelAssessmentType(d domain.AssessmentType) models.AssessmentType {
	return models.AssessmentType{
		AssessmentTypeID:    d.AssessmentTypeID,
		AssociationID:       d.AssociationID,
		Name:                d.Name,
		IncomeAccountNumber: d.IncomeAccountNumber,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAssessmentType converts a model AssessmentType to a domain AssessmentType
func ToDomainAssessmentType(m models.AssessmentType) domain.AssessmentType {
	return domain.AssessmentType{
		AssessmentTypeID:    m.AssessmentTypeID,
		AssociationID:       m.AssociationID,
		Name:                m.Name,
		IncomeAccountNumber: m.IncomeAccountNumber,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAssessmentTypeSlice converts model assessment types to domain ones
func ToDomainAssessmentTypeSlice(ms []models.AssessmentType) []domain.AssessmentType {
	ds := make([]domain.AssessmentType, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAssessmentType(m)
	}
	return ds
}
