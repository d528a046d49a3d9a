package domain

// Association represents a single community (HOA, condo, strata corporation)
// whose books are kept in this system. All ledger data is scoped to one association.
type Association struct {
	AssociationID string `json:"associationID"` // Primary Key (UUID)
	Name          string `json:"name"`          // Legal or common name
	Timezone      string `json:"timezone"`      // IANA zone used for statement cutoffs, optional
	IsActive      bool   `json:"isActive"`
	AuditFields
}

// Unit represents a billable unit (lot, apartment, parcel) within an association.
type Unit struct {
	UnitID        string `json:"unitID"`        // Primary Key (UUID)
	AssociationID string `json:"associationID"` // FK -> associations.association_id
	UnitNumber    string `json:"unitNumber"`    // Unique within the association
	AuditFields
}

// AssessmentType classifies charges (regular assessment, special assessment,
// late fee, ...) and names the income account its charges credit.
type AssessmentType struct {
	AssessmentTypeID    string `json:"assessmentTypeID"`    // Primary Key (UUID)
	AssociationID       string `json:"associationID"`       // FK -> associations.association_id
	Name                string `json:"name"`                // Unique within the association
	IncomeAccountNumber string `json:"incomeAccountNumber"` // GL account credited when charges post
	AuditFields
}
