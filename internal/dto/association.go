package dto

import (
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// --- Association DTOs ---

// CreateAssociationRequest defines data for creating a new association.
type CreateAssociationRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"` // Optional, defaults to UTC
}

// AssociationResponse defines data returned for an association.
type AssociationResponse struct {
	AssociationID string    `json:"associationID"`
	Name          string    `json:"name"`
	Timezone      string    `json:"timezone"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToAssociationResponse converts domain.Association to DTO.
func ToAssociationResponse(a *domain.Association) AssociationResponse {
	return AssociationResponse{
		AssociationID: a.AssociationID,
		Name:          a.Name,
		Timezone:      a.Timezone,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// --- Unit DTOs ---

// CreateUnitRequest defines data for adding a unit to an association.
type CreateUnitRequest struct {
	UnitNumber string `json:"unitNumber" binding:"required"`
}

// UnitResponse defines data returned for a unit.
type UnitResponse struct {
	UnitID        string `json:"unitID"`
	AssociationID string `json:"associationID"`
	UnitNumber    string `json:"unitNumber"`
}

// ToUnitResponse converts domain.Unit to DTO.
func ToUnitResponse(u *domain.Unit) UnitResponse {
	return UnitResponse{
		UnitID:        u.UnitID,
		AssociationID: u.AssociationID,
		UnitNumber:    u.UnitNumber,
	}
}

// ListUnitsResponse wraps a list of units.
type ListUnitsResponse struct {
	Units []UnitResponse `json:"units"`
}

// ToListUnitsResponse converts a slice of domain.Unit to DTO.
func ToListUnitsResponse(units []domain.Unit) ListUnitsResponse {
	list := make([]UnitResponse, len(units))
	for i, u := range units {
		list[i] = ToUnitResponse(&u)
	}
	return ListUnitsResponse{Units: list}
}

// --- Assessment type DTOs ---

// AssessmentTypeResponse defines data returned for an assessment type.
type AssessmentTypeResponse struct {
	AssessmentTypeID    string `json:"assessmentTypeID"`
	Name                string `json:"name"`
	IncomeAccountNumber string `json:"incomeAccountNumber"`
}

// ToAssessmentTypeResponse converts domain.AssessmentType to DTO.
func ToAssessmentTypeResponse(t *domain.AssessmentType) AssessmentTypeResponse {
	return AssessmentTypeResponse{
		AssessmentTypeID:    t.AssessmentTypeID,
		Name:                t.Name,
		IncomeAccountNumber: t.IncomeAccountNumber,
	}
}

// ListAssessmentTypesResponse wraps an association's assessment types.
type ListAssessmentTypesResponse struct {
	AssessmentTypes []AssessmentTypeResponse `json:"assessmentTypes"`
}

// ToListAssessmentTypesResponse converts a slice of domain.AssessmentType to DTO.
func ToListAssessmentTypesResponse(types []domain.AssessmentType) ListAssessmentTypesResponse {
	list := make([]AssessmentTypeResponse, len(types))
	for i, t := range types {
		list[i] = ToAssessmentTypeResponse(&t)
	}
	return ListAssessmentTypesResponse{AssessmentTypes: list}
}
