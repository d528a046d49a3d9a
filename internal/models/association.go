package models

// Association represents one community whose books live in this database.
type Association struct {
	AssociationID string `db:"association_id"`
	Name          string `db:"name"`
	Timezone      string `db:"timezone"`
	IsActive      bool   `db:"is_active"`
	AuditFields
}

// Unit represents a billable unit row scoped to an association.
type Unit struct {
	UnitID        string `db:"unit_id"`
	AssociationID string `db:"association_id"`
	UnitNumber    string `db:"unit_number"`
	AuditFields
}

// AssessmentType classifies charges and names the GL income account they credit.
type AssessmentType struct {
	AssessmentTypeID    string `db:"assessment_type_id"`
	AssociationID       string `db:"association_id"`
	Name                string `db:"name"`
	IncomeAccountNumber string `db:"income_account_number"`
	AuditFields
}
